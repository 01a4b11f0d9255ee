package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCommandForMe(t *testing.T) {
	tests := []struct {
		name     string
		chatType string
		text     string
		username string
		want     bool
	}{
		{"私聊裸命令", ChatPrivate, "/start", "mybot", true},
		{"私聊带后缀", ChatPrivate, "/start@mybot", "mybot", true},
		{"私聊非命令", ChatPrivate, "hello", "mybot", false},
		{"私聊空文本", ChatPrivate, "", "mybot", false},
		{"群聊裸命令不认领", ChatGroup, "/start", "mybot", false},
		{"群聊后缀匹配", ChatGroup, "/start@mybot", "mybot", true},
		{"群聊后缀不匹配", ChatGroup, "/start@otherbot", "mybot", false},
		{"超级群后缀匹配", ChatSuperGroup, "/qd@mybot", "mybot", true},
		{"群聊后缀带参数", ChatGroup, "/fy@mybot en 你好", "mybot", true},
		{"参数里的at不算", ChatGroup, "/fy en hello@mybot", "mybot", false},
		{"群聊无用户名", ChatGroup, "/start@mybot", "", false},
		{"群聊普通文本", ChatGroup, "随便聊聊", "mybot", false},
		{"群聊提及非命令", ChatGroup, "@mybot 在吗", "mybot", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCommandForMe(tt.chatType, tt.text, tt.username)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldDeleteMessage(t *testing.T) {
	tests := []struct {
		name     string
		chatType string
		text     string
		username string
		enabled  bool
		want     bool
	}{
		{"开关关闭一律不删", ChatPrivate, "/start", "mybot", false, false},
		{"私聊任何消息都删", ChatPrivate, "随便说说", "mybot", true, true},
		{"私聊空消息也删", ChatPrivate, "", "mybot", true, true},
		{"群聊发给自己的命令删", ChatGroup, "/qd@mybot", "mybot", true, true},
		{"群聊裸命令不删", ChatGroup, "/qd", "mybot", true, false},
		{"群聊提及删", ChatGroup, "@mybot 帮个忙", "mybot", true, true},
		{"群聊普通聊天不删", ChatGroup, "今天天气不错", "mybot", true, false},
		{"群聊无用户名不删", ChatGroup, "@mybot 在吗", "", true, false},
		{"超级群提及删", ChatSuperGroup, "问一下@mybot", "mybot", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldDeleteMessage(tt.chatType, tt.text, tt.username, tt.enabled)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 任意输入都必须有确定结果，不会panic
func TestAttributionTotality(t *testing.T) {
	chatTypes := []string{ChatPrivate, ChatGroup, ChatSuperGroup, "channel", ""}
	texts := []string{"", "/", "/cmd", "/cmd@", "/cmd@bot", "@bot", "plain", "/cmd @bot"}
	usernames := []string{"", "bot", "otherbot"}

	for _, ct := range chatTypes {
		for _, text := range texts {
			for _, u := range usernames {
				assert.NotPanics(t, func() {
					IsCommandForMe(ct, text, u)
					ShouldDeleteMessage(ct, text, u, true)
				})
			}
		}
	}
}

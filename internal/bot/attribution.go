package bot

import "strings"

// 聊天类型，与Telegram的chat type字符串保持一致
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSuperGroup = "supergroup"
)

// IsCommandForMe 判断一条命令是否明确发给本机器人。
//
// 私聊里只有一个接收者，命令一律算给自己的；群里可能有多个机器人，
// 只有命令后缀写了 @botUsername 才算，裸命令无法确定目标，一律当作不是
// 发给自己的，宁可漏回不抢答。
func IsCommandForMe(chatType, text, botUsername string) bool {
	if text == "" || !strings.HasPrefix(text, "/") {
		return false
	}

	if chatType == ChatPrivate {
		return true
	}

	if botUsername == "" {
		return false
	}

	// 只看命令词本身的@后缀，后面的参数不参与判断
	token := text
	if idx := strings.IndexAny(token, " \t\n"); idx >= 0 {
		token = token[:idx]
	}

	at := strings.Index(token, "@")
	if at < 0 {
		// 群里的裸命令目标不明确，不认领
		return false
	}

	return strings.TrimSpace(token[at+1:]) == botUsername
}

// ShouldDeleteMessage 判断一条消息是否可以进入自动删除流程。
//
// 删除是不可逆的，群里只清理确定与本机器人相关的消息：
// 发给自己的命令，或者正文里明确@了自己。普通群聊绝不删。
// 私聊里的消息都可以删。
func ShouldDeleteMessage(chatType, textOrCaption, botUsername string, autoDeleteEnabled bool) bool {
	if !autoDeleteEnabled {
		return false
	}

	if chatType == ChatPrivate {
		return true
	}

	if IsCommandForMe(chatType, textOrCaption, botUsername) {
		return true
	}

	if botUsername != "" && strings.Contains(textOrCaption, "@"+botUsername) {
		return true
	}

	return false
}

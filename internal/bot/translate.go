package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"tgbot_backend/internal/config"
	"time"
)

// LangNames 支持的目标语言代码及其中文名
var LangNames = map[string]string{
	"en": "英语",
	"zh": "中文",
	"jp": "日语",
	"fr": "法语",
	"de": "德语",
	"es": "西班牙语",
	"it": "意大利语",
	"ru": "俄语",
	"ko": "韩语",
}

// NormalizeLang 归一化语言代码，不支持的返回空串
func NormalizeLang(code string) string {
	code = strings.ToLower(code)
	if code == "ch" {
		code = "zh"
	}
	if _, ok := LangNames[code]; !ok {
		return ""
	}
	return code
}

// Translator 文本翻译能力，targetLang为归一化后的语言代码
type Translator interface {
	Translate(ctx context.Context, targetLang, text string) (string, error)
}

// AITranslator 调用OpenAI兼容接口做翻译
type AITranslator struct {
	cfg    config.AIConfig
	client *http.Client
}

func NewAITranslator(cfg config.AIConfig) *AITranslator {
	return &AITranslator{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (t *AITranslator) Translate(ctx context.Context, targetLang, text string) (string, error) {
	prompt := fmt.Sprintf("将以下文本翻译成%s，不要添加解释，只返回翻译结果:\n%s", LangNames[targetLang], text)
	body, err := json.Marshal(chatRequest{
		Model: t.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(t.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translate api returned %d: %s", resp.StatusCode, string(data))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("translate api returned no choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

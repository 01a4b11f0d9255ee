package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const telegraphAPI = "https://api.telegra.ph"

var titlePattern = regexp.MustCompile(`(?i)<title>(.*?)</title>`)

// WebPublisher 把网页内容转成可分享的链接
type WebPublisher interface {
	Publish(ctx context.Context, pageURL, authorName string) (string, error)
}

// TelegraphPublisher 抓取网页正文并发布为Telegraph页面
type TelegraphPublisher struct {
	client *http.Client
}

func NewTelegraphPublisher() *TelegraphPublisher {
	return &TelegraphPublisher{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type telegraphResult struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Result struct {
		AccessToken string `json:"access_token"`
		Path        string `json:"path"`
	} `json:"result"`
}

func (p *TelegraphPublisher) Publish(ctx context.Context, pageURL, authorName string) (string, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return "", fmt.Errorf("invalid url scheme: %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s returned %d", pageURL, resp.StatusCode)
	}

	// Telegraph单页上限64KB，超出部分截断
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	html := string(data)

	title := "网页内容"
	if m := titlePattern.FindStringSubmatch(html); m != nil {
		title = strings.TrimSpace(m[1])
	}

	token, err := p.createAccount(ctx, authorName)
	if err != nil {
		return "", err
	}

	return p.createPage(ctx, token, title, htmlToNodes(pageURL, html), authorName)
}

func (p *TelegraphPublisher) createAccount(ctx context.Context, authorName string) (string, error) {
	var out telegraphResult
	if err := p.call(ctx, "/createAccount", url.Values{
		"short_name":  {"TelegramBot"},
		"author_name": {authorName},
	}, &out); err != nil {
		return "", err
	}
	return out.Result.AccessToken, nil
}

func (p *TelegraphPublisher) createPage(ctx context.Context, token, title, content, authorName string) (string, error) {
	var out telegraphResult
	if err := p.call(ctx, "/createPage", url.Values{
		"access_token": {token},
		"title":        {title},
		"content":      {content},
		"author_name":  {authorName},
	}, &out); err != nil {
		return "", err
	}
	return "https://telegra.ph/" + out.Result.Path, nil
}

func (p *TelegraphPublisher) call(ctx context.Context, method string, form url.Values, out *telegraphResult) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, telegraphAPI+method,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegraph %s failed: %s", method, out.Error)
	}
	return nil
}

var (
	scriptPattern = regexp.MustCompile(`(?s)<script.*?</script>|<style.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// htmlToNodes 把网页转成Telegraph的Node数组。
// Telegraph不接受原始HTML字符串，标签剥掉只留正文，页面开头保留原始链接。
func htmlToNodes(pageURL, html string) string {
	text := scriptPattern.ReplaceAllString(html, "")
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")

	nodes := []map[string]interface{}{
		{"tag": "p", "children": []interface{}{
			"原始链接：",
			map[string]interface{}{
				"tag":      "a",
				"attrs":    map[string]string{"href": pageURL},
				"children": []interface{}{pageURL},
			},
		}},
		{"tag": "hr"},
		{"tag": "p", "children": []interface{}{text}},
	}
	data, _ := json.Marshal(nodes)
	return string(data)
}

// Package generator builds the prompts handed to the language model.
// The agent itself never calls a model API; it prints the prompt and
// the operator pastes back the generated text.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yhzhou/ttagent/internal/config"
)

const defaultPromptPath = "prompts/comment_generation.txt"

// defaultCommentPrompt is used when no override file exists. The
// {title} and {abstract} placeholders are filled per article.
const defaultCommentPrompt = `你是一个真实的头条用户，正在对新闻发表评论。

新闻标题：{title}
新闻摘要：{abstract}

要求：
1. 长度：{length}
2. 必须有明确的个人立场（支持/反对/质疑）
3. 使用口语化表达，加入情感词汇
4. 避免"综上所述"、"首先其次"等AI常用词
5. 可以用适当的感叹词、反问句
6. 如果是争议话题，不要骑墙，选边站

参考风格：
- 这事儿吧，我觉得...
- 说实话，我真的不理解...
- 我就问一句，这合理吗？

请直接输出评论，不要任何解释：`

// CommentGenerator renders comment prompts from a template. The
// template can be overridden by a file so operators can tune the voice
// without rebuilding.
type CommentGenerator struct {
	promptPath string
	template   string
	style      config.StyleConfig
}

// NewCommentGenerator loads the template from promptPath, falling back
// to the built-in template when the file is absent. An empty promptPath
// uses the default location.
func NewCommentGenerator(promptPath string, style config.StyleConfig) (*CommentGenerator, error) {
	if promptPath == "" {
		promptPath = defaultPromptPath
	}
	g := &CommentGenerator{promptPath: promptPath, style: style}

	data, err := os.ReadFile(promptPath)
	switch {
	case err == nil:
		g.template = string(data)
	case os.IsNotExist(err):
		g.template = defaultCommentPrompt
	default:
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return g, nil
}

// CommentPrompt renders the prompt for one article. The abstract is
// truncated so a long article body does not drown the instructions.
func (g *CommentGenerator) CommentPrompt(title, abstract string) string {
	abstract = truncate(abstract, 200)
	length := g.style.Length
	if length == "" {
		length = "50-100字"
	}

	r := strings.NewReplacer(
		"{title}", title,
		"{abstract}", abstract,
		"{length}", length,
		"{stance}", g.style.Stance,
		"{emotion_level}", g.style.EmotionLevel,
	)
	return r.Replace(g.template)
}

// SaveTemplate writes the current template to the override file,
// creating the prompts directory if needed.
func (g *CommentGenerator) SaveTemplate(template string) error {
	if err := os.MkdirAll(filepath.Dir(g.promptPath), 0o755); err != nil {
		return fmt.Errorf("create prompt dir: %w", err)
	}
	if err := os.WriteFile(g.promptPath, []byte(template), 0o644); err != nil {
		return fmt.Errorf("write prompt template: %w", err)
	}
	g.template = template
	return nil
}

// HeadlinePrompt renders the prompt for an original micro-headline
// entering a campaign. hashtag is the #话题# string, empty when the
// campaign has none.
func HeadlinePrompt(title, introduction, hashtag string) string {
	var b strings.Builder
	b.WriteString("请根据以下活动信息生成一条微头条内容：\n\n")
	fmt.Fprintf(&b, "活动标题: %s\n", title)
	fmt.Fprintf(&b, "活动介绍: %s\n", truncate(introduction, 300))
	if hashtag != "" {
		fmt.Fprintf(&b, "话题标签: %s\n", hashtag)
	}
	b.WriteString("\n要求:\n")
	b.WriteString("- 字数: 100-300 字\n")
	if hashtag != "" {
		b.WriteString("- 必须包含话题标签\n")
	}
	b.WriteString("- 内容与活动主题相关\n")
	b.WriteString("- 积极向上的语气\n")
	b.WriteString("- 适当使用 emoji\n")
	b.WriteString("\n请直接输出微头条内容。")
	return b.String()
}

// truncate cuts s to at most n runes, not bytes, so multi-byte text is
// never split mid-character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

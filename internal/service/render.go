package service

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps(), goldmarkhtml.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()
)

const excerptLimit = 160

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(sanitizer.SanitizeBytes(buf.Bytes()))), nil
}

// SanitizeHTML strips anything outside the user generated content policy.
func SanitizeHTML(raw string) string {
	return sanitizer.Sanitize(raw)
}

// resolveContentHTML 优先清洗调用方提供的 HTML，否则由 markdown 渲染。
func resolveContentHTML(content string, supplied *string) (string, error) {
	if supplied != nil && strings.TrimSpace(*supplied) != "" {
		return SanitizeHTML(*supplied), nil
	}
	return RenderMarkdown(content)
}

// summarizeContent 去除 HTML 与 markdown 标记后截取前若干字作为摘要。
func summarizeContent(markdown string) string {
	text := html.UnescapeString(stripper.Sanitize(markdown))
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
		"(", " ",
		")", " ",
	)
	plain := strings.Join(strings.Fields(replacer.Replace(text)), " ")
	if plain == "" {
		return ""
	}

	if utf8.RuneCountInString(plain) <= excerptLimit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:excerptLimit])) + "…"
}

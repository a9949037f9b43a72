package git

import (
	"path"
	"strings"
)

var extLangs = map[string]string{
	"ts":     "typescript",
	"tsx":    "tsx",
	"js":     "javascript",
	"jsx":    "jsx",
	"mjs":    "javascript",
	"cjs":    "javascript",
	"rs":     "rust",
	"go":     "go",
	"py":     "python",
	"rb":     "ruby",
	"java":   "java",
	"kt":     "kotlin",
	"swift":  "swift",
	"c":      "c",
	"h":      "c",
	"cpp":    "cpp",
	"cc":     "cpp",
	"hpp":    "cpp",
	"cs":     "csharp",
	"php":    "php",
	"sh":     "bash",
	"bash":   "bash",
	"zsh":    "bash",
	"fish":   "fish",
	"json":   "json",
	"yaml":   "yaml",
	"yml":    "yaml",
	"toml":   "toml",
	"xml":    "xml",
	"html":   "html",
	"htm":    "html",
	"css":    "css",
	"scss":   "scss",
	"less":   "less",
	"md":     "markdown",
	"mdx":    "mdx",
	"sql":    "sql",
	"vue":    "vue",
	"svelte": "svelte",
	"lua":    "lua",
	"zig":    "zig",
	"nix":    "nix",
	"proto":  "proto",
}

var nameLangs = map[string]string{
	"Dockerfile": "dockerfile",
	"Makefile":   "makefile",
	"go.mod":     "go-mod",
	"go.sum":     "go-sum",
}

// Lang returns the language id for a file path, or "" when unknown.
func Lang(p string) string {
	base := path.Base(p)
	if lang, ok := nameLangs[base]; ok {
		return lang
	}
	ext := strings.TrimPrefix(path.Ext(base), ".")
	if ext == "" {
		return ""
	}
	return extLangs[strings.ToLower(ext)]
}

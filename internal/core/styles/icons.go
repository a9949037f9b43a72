package styles

import (
	"path/filepath"
	"strings"
)

// Tip: To find icons use https://github.com/loichyan/nerdfix

// Directory icons
var (
	IconFolderOpen   = "\uf07c"
	IconFolderClosed = "\uf07b"
	IconComment      = "\uf075"
)

// File type icons
var (
	IconFileDefault  = "\uf15b"
	IconFileGo       = "\ue627"
	IconFileJS       = "\ue74e"
	IconFileTS       = "\ue628"
	IconFilePython   = "\ue73c"
	IconFileMarkdown = "\ue73e"
	IconFileJSON     = "\ue60b"
	IconFileYAML     = "\ue6a8"
	IconFileTOML     = "\ue6b2"
	IconFileHTML     = "\ue736"
	IconFileCSS      = "\ue749"
	IconFileRust     = "\ue7a8"
	IconFileC        = "\ue61e"
	IconFileCPP      = "\ue61d"
	IconFileJava     = "\ue738"
	IconFileRuby     = "\ue739"
	IconFileShell    = "\uf489"
	IconFileLua      = "\ue620"
	IconFileDocker   = "\uf308"
	IconFileMakefile = "\ue779"
)

var extIcons = map[string]string{
	".go":   IconFileGo,
	".js":   IconFileJS,
	".jsx":  IconFileJS,
	".mjs":  IconFileJS,
	".ts":   IconFileTS,
	".tsx":  IconFileTS,
	".py":   IconFilePython,
	".md":   IconFileMarkdown,
	".json": IconFileJSON,
	".yaml": IconFileYAML,
	".yml":  IconFileYAML,
	".toml": IconFileTOML,
	".html": IconFileHTML,
	".htm":  IconFileHTML,
	".css":  IconFileCSS,
	".rs":   IconFileRust,
	".c":    IconFileC,
	".h":    IconFileC,
	".cpp":  IconFileCPP,
	".cc":   IconFileCPP,
	".hpp":  IconFileCPP,
	".java": IconFileJava,
	".rb":   IconFileRuby,
	".sh":   IconFileShell,
	".bash": IconFileShell,
	".zsh":  IconFileShell,
	".lua":  IconFileLua,
}

// FileIcon returns the nerd font icon for path.
func FileIcon(path string) string {
	switch strings.ToLower(filepath.Base(path)) {
	case "dockerfile":
		return IconFileDocker
	case "makefile":
		return IconFileMakefile
	}
	if icon, ok := extIcons[strings.ToLower(filepath.Ext(path))]; ok {
		return icon
	}
	return IconFileDefault
}

// DirIcon returns the nerd font folder icon.
func DirIcon(expanded bool) string {
	if expanded {
		return IconFolderOpen
	}
	return IconFolderClosed
}

// PlainDirIcon returns the ASCII folder marker used when icons are disabled.
func PlainDirIcon(expanded bool) string {
	if expanded {
		return "▾"
	}
	return "▸"
}

// Package ui holds the terminal output of the vkprofiler CLI: colored
// message helpers, a line-based collection progress printer and the
// comparison report in text, JSON or Markdown. The tui subpackage renders
// the same progress as a bubbletea view.
package ui

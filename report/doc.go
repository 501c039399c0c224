// Package report renders benchmark summaries as GitHub-flavored Markdown.
package report

package tui

type View int

const (
	ViewInput View = iota
	ViewHelp
)

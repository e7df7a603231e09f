package config

import (
	"fmt"
	"io"
	"log"
)

// NewLogger returns a logger whose lines start with a coloured [NAME] tag.
func NewLogger(name, color string, w io.Writer) *log.Logger {
	return log.New(w, fmt.Sprintf("%s[%s]%s ", color, name, ColorReset), log.LstdFlags)
}

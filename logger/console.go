package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const ansiReset = "\033[0m"

var levelStyle = map[string]struct{ tag, color string }{
	"trace": {"TRC", ""},
	"debug": {"DBG", "\033[36m"},
	"info":  {"INF", "\033[32m"},
	"warn":  {"WRN", "\033[33m"},
	"error": {"ERR", "\033[31m"},
	"fatal": {"FTL", "\033[35m"},
}

// consoleWriter renders "[SHO][INF] message key:value" lines, prefixing the
// first three letters of the service name.
func consoleWriter(out io.Writer, service string, noColor bool) zerolog.ConsoleWriter {
	paint := func(color, s string) string {
		if noColor || color == "" {
			return s
		}
		return color + s + ansiReset
	}
	prefix := ""
	if len(service) >= 3 && service != "default" {
		prefix = paint("\033[34m", "["+strings.ToUpper(service[:3])+"]")
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i any) string {
			level := fmt.Sprint(i)
			style, ok := levelStyle[level]
			if !ok {
				style.tag = strings.ToUpper(level)
			}
			return prefix + paint(style.color, "["+style.tag+"]")
		},
		FormatFieldName: func(i any) string { return fmt.Sprint(i) + ":" },
	}
}

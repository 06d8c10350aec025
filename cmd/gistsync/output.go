package main

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

var htmlTag = regexp.MustCompile(`</?[a-z]+>`)

// plain strips the inline markup the host renders in notifications.
func plain(msg string) string {
	return htmlTag.ReplaceAllString(msg, "")
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printMessage(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}

package fdexpect

import (
	"errors"
	"strings"
)

type voidWriter struct{}

func (v voidWriter) Write(p []byte) (n int, err error) { return len(p), nil }

func unwrapErrorMessage(err error) string {
	if err == nil {
		return "<nil>"
	}
	msg := []string{}
	for err != nil {
		msg = append(msg, err.Error())
		err = errors.Unwrap(err)
	}
	return strings.Join(msg, " -> ")
}

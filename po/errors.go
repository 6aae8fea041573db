package po

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedLine = errors.New("unrecognized line")
	ErrMisplacedComment = errors.New(
		"comment after message content; comments must precede msgctxt/msgid")
	ErrMisplacedMsgctxt      = errors.New("misplaced msgctxt")
	ErrMisplacedMsgid        = errors.New("misplaced msgid")
	ErrMisplacedMsgidPlural  = errors.New("msgid_plural must follow msgid")
	ErrMisplacedMsgstr       = errors.New("msgstr must follow msgid")
	ErrMisplacedMsgstrPlural = errors.New(
		"msgstr[n] must follow msgid_plural or another msgstr[n]")
	ErrMisplacedContinuation = errors.New("continuation line without a field")
	ErrBadStringLiteral      = errors.New("malformed string literal")
	ErrBadPluralIndex        = errors.New("malformed msgstr index")
	ErrPluralIndexOutOfRange = errors.New(
		"plural form index out of range for entry translations")
	ErrBadCulture = errors.New("unrecognized culture")
)

// Position locates a parse error in its source file.
type Position struct {
	Filename string
	Line     int
}

// Error is a positioned format error raised by the reader.
type Error struct {
	Pos      Position
	Expected string
	Err      error
}

func (e Error) Error() string {
	err := e.Err
	if err == nil {
		err = ErrUnexpectedLine
	}
	if e.Expected == "" {
		return fmt.Sprintf("%s:%d: %s", e.Pos.Filename, e.Pos.Line, err.Error())
	}
	return fmt.Sprintf("%s:%d: expected %s; %s",
		e.Pos.Filename, e.Pos.Line, e.Expected, err.Error())
}

func (e Error) Unwrap() error { return e.Err }

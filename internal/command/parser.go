package command

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// MaxValueLen is the longest field value, in characters, a command may carry.
const MaxValueLen = 1000

// lineBreaks turns a multi-line value into one line; stored records are
// one per line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Parse maps one line of chat text to a Command. Keywords match exactly,
// so "/ADD" is an unknown command.
func Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil, ErrNotCommand
	}

	head, params := splitHead(text)
	kw := Keyword(head)

	switch kw {
	case KeywordStart:
		return Help{}, nil
	case KeywordList:
		return List{}, nil
	case KeywordDashboard:
		return Dashboard{}, nil
	case KeywordAdd:
		return parseAdd(params)
	case KeywordUpdate:
		return parseUpdate(params)
	case KeywordDelete:
		id, err := parseSingleID(kw, text)
		if err != nil {
			return nil, err
		}
		return Delete{ID: id}, nil
	case KeywordInfo:
		id, err := parseSingleID(kw, text)
		if err != nil {
			return nil, err
		}
		return Info{ID: id}, nil
	case KeywordStatus:
		id, value, err := parseIDValue(kw, params)
		if err != nil {
			return nil, err
		}
		return SetStatus{ID: id, Status: value}, nil
	case KeywordAssign:
		id, value, err := parseIDValue(kw, params)
		if err != nil {
			return nil, err
		}
		return Assign{ID: id, Executor: value}, nil
	default:
		return nil, newParseError(KindUnknownCommand, kw, "unknown command %q", head)
	}
}

// splitHead separates the command word from its arguments. A "@botname"
// suffix on the command word is dropped.
func splitHead(text string) (head, params string) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		head = text
	} else {
		head, params = text[:i], text[i:]
	}
	if at := strings.IndexByte(head, '@'); at > 0 {
		head = head[:at]
	}
	return head, params
}

// splitArgs splits comma-separated arguments and trims each one.
func splitArgs(params string) []string {
	if strings.TrimSpace(params) == "" {
		return nil
	}
	parts := strings.Split(params, ",")
	for i := range parts {
		parts[i] = clean(parts[i])
	}
	return parts
}

// rest rejoins every argument from index i on, so values may contain commas.
func rest(params string, i int) string {
	parts := strings.Split(params, ",")
	return clean(strings.Join(parts[i:], ","))
}

func clean(v string) string {
	return strings.TrimSpace(lineBreaks.Replace(v))
}

// checkLen rejects values longer than MaxValueLen.
func checkLen(kw Keyword, id int, values ...string) error {
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > MaxValueLen {
			perr := newParseError(KindTooLong, kw, "value has %d characters, limit %d", n, MaxValueLen)
			perr.ID = id
			return perr
		}
	}
	return nil
}

func parseID(kw Keyword, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newParseError(KindNotAnInteger, kw, "project id %q is not an integer", s)
	}
	return id, nil
}

func parseAdd(params string) (Command, error) {
	args := splitArgs(params)
	if len(args) < 4 {
		return nil, newParseError(KindMissingArgs, KeywordAdd, "want 4 comma-separated fields, got %d", len(args))
	}
	for i, name := range []string{"name", "problem", "initiator", "deadline"} {
		if args[i] == "" {
			return nil, newParseError(KindMissingArgs, KeywordAdd, "%s is empty", name)
		}
	}
	if err := checkLen(KeywordAdd, 0, args[:4]...); err != nil {
		return nil, err
	}
	return Add{
		Name:      args[0],
		Problem:   args[1],
		Initiator: args[2],
		Deadline:  args[3],
	}, nil
}

func parseUpdate(params string) (Command, error) {
	args := splitArgs(params)
	if len(args) < 3 {
		return nil, newParseError(KindMissingArgs, KeywordUpdate, "want id, field and value, got %d fields", len(args))
	}
	id, err := parseID(KeywordUpdate, args[0])
	if err != nil {
		return nil, err
	}
	field, ok := project.LookupField(args[1])
	if !ok {
		perr := newParseError(KindUnknownField, KeywordUpdate, "unknown field %q", args[1])
		perr.ID = id
		return nil, perr
	}
	value := rest(params, 2)
	if err := checkLen(KeywordUpdate, id, value); err != nil {
		return nil, err
	}
	return Update{ID: id, Field: field, Value: value}, nil
}

// parseSingleID handles "/cmd <id>" forms, which are whitespace separated.
func parseSingleID(kw Keyword, text string) (int, error) {
	tokens := strings.Fields(text)
	if len(tokens) != 2 {
		return 0, newParseError(KindMissingArgs, kw, "want exactly one project id, got %d arguments", len(tokens)-1)
	}
	return parseID(kw, tokens[1])
}

// parseIDValue handles "/cmd <id>, <value>" forms.
func parseIDValue(kw Keyword, params string) (int, string, error) {
	args := splitArgs(params)
	if len(args) < 2 {
		return 0, "", newParseError(KindMissingArgs, kw, "want id and value, got %d fields", len(args))
	}
	id, err := parseID(kw, args[0])
	if err != nil {
		return 0, "", err
	}
	value := rest(params, 1)
	if err := checkLen(kw, id, value); err != nil {
		return 0, "", err
	}
	return id, value, nil
}

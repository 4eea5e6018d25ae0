package telegram

import (
	"errors"
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz = "quiz"
	actionTop  = "top"
)

// Quiz sub-actions.
const (
	quizStart  = "start"
	quizToggle = "toggle"
	quizSubmit = "submit"
	quizNext   = "next"
)

// maxCallbackDataLen is Telegram's limit for inline button payloads.
const maxCallbackDataLen = 64

var errBadCallback = errors.New("malformed callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// quizCallback is a decoded quiz button press. Question is the index of the
// question the keyboard was drawn for.
type quizCallback struct {
	Sub       string
	SessionID string
	Question  int
	Option    int
}

// parseQuizCallback validates the params of a quiz action.
func parseQuizCallback(cd callbackData) (quizCallback, error) {
	if cd.Action != actionQuiz || len(cd.Params) == 0 {
		return quizCallback{}, errBadCallback
	}

	qc := quizCallback{Sub: cd.Params[0], Question: -1, Option: -1}
	switch qc.Sub {
	case quizStart:
		if len(cd.Params) != 1 {
			return quizCallback{}, errBadCallback
		}
		return qc, nil
	case quizSubmit, quizNext:
		if len(cd.Params) != 3 {
			return quizCallback{}, errBadCallback
		}
	case quizToggle:
		if len(cd.Params) != 4 {
			return quizCallback{}, errBadCallback
		}
		idx, ok := parseIndex(cd.Params[3])
		if !ok {
			return quizCallback{}, errBadCallback
		}
		qc.Option = idx
	default:
		return quizCallback{}, errBadCallback
	}

	question, ok := parseIndex(cd.Params[2])
	if cd.Params[1] == "" || !ok {
		return quizCallback{}, errBadCallback
	}
	qc.SessionID = cd.Params[1]
	qc.Question = question

	return qc, nil
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0
}

// buildQuizStartCallback builds callback data for starting a quiz session.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildQuizToggleCallback builds callback data for toggling an option of the given question.
func buildQuizToggleCallback(sessionID string, question, optionIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizToggle, sessionID, strconv.Itoa(question), strconv.Itoa(optionIndex)},
	}.encode()
}

func buildQuizSubmitCallback(sessionID string, question int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizSubmit, sessionID, strconv.Itoa(question)},
	}.encode()
}

func buildQuizNextCallback(sessionID string, question int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizNext, sessionID, strconv.Itoa(question)},
	}.encode()
}

func buildTopCallback() string {
	return actionTop
}

package pipeline

import "strings"

// Task identifies one of the supported text-to-text task shapes.
type Task string

const (
	TaskTextGeneration      Task = "text-generation"
	TaskText2TextGeneration Task = "text2text-generation"
	TaskSummarization       Task = "summarization"
	TaskTranslation         Task = "translation"
)

// SupportedTasks returns the closed set of task identifiers in stable order.
func SupportedTasks() []Task {
	return []Task{TaskTextGeneration, TaskText2TextGeneration, TaskSummarization, TaskTranslation}
}

// ParseTask validates a task identifier against the supported set.
func ParseTask(s string) (Task, error) {
	t := Task(strings.TrimSpace(s))
	switch t {
	case TaskTextGeneration, TaskText2TextGeneration, TaskSummarization, TaskTranslation:
		return t, nil
	}
	return "", ErrUnsupportedTask(s)
}

// Payload carries the task-shaped output of one inference run. The task
// designates which field is meaningful; see outputText.
type Payload struct {
	GeneratedText   string
	SummaryText     string
	TranslationText string
}

// taskPayload places generated text into the field designated by the task.
func taskPayload(task Task, text string) Payload {
	switch task {
	case TaskSummarization:
		return Payload{SummaryText: text}
	case TaskTranslation:
		return Payload{TranslationText: text}
	default:
		return Payload{GeneratedText: text}
	}
}

// outputText selects the payload field designated by the task. For plain text
// generation it strips the leading prompt echo when present, unless the caller
// asked for the echoed form.
func outputText(task Task, prompt string, p Payload, echo bool) string {
	switch task {
	case TaskSummarization:
		return p.SummaryText
	case TaskTranslation:
		return p.TranslationText
	case TaskText2TextGeneration:
		return p.GeneratedText
	default:
		out := p.GeneratedText
		if !echo {
			out = strings.TrimPrefix(out, prompt)
		}
		return out
	}
}

package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// renderPromptMessages expands model prompt templates with request data and ensures a user message exists.
func renderPromptMessages(model domain.ModelDefinition, req ports.ProviderRequest) ([]domain.PromptMessage, error) {
	data := buildTemplateData(req)
	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultTemplateMessages()
	}

	rendered := make([]domain.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(content),
		})
	}

	if !hasUserMessage(rendered) {
		rendered = append(rendered, domain.PromptMessage{
			Role:    "user",
			Content: strings.TrimSpace(data.Utterance),
		})
	}

	return rendered, nil
}

type templateData struct {
	Utterance   string
	StateDigest string
	Vocabulary  string
}

func buildTemplateData(req ports.ProviderRequest) templateData {
	vocabulary := req.Vocabulary
	if len(vocabulary) == 0 {
		vocabulary = domain.Vocabulary()
	}
	names := make([]string, 0, len(vocabulary))
	for _, kind := range vocabulary {
		names = append(names, string(kind))
	}
	return templateData{
		Utterance:   strings.TrimSpace(req.Utterance),
		StateDigest: strings.TrimSpace(req.StateDigest),
		Vocabulary:  strings.Join(names, ", "),
	}
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultTemplateMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You classify requests about Git into exactly one intent tag.
Allowed tags: {{.Vocabulary}}
Answer with the tag on the first line. If the request names a branch, a commit
message, a remote or a path, add lines such as "branch: feature/login",
"target: main", "message: fix typo" or "remote: origin". Answer "unknown" when
no tag fits. Never answer with a shell command.
{{if .StateDigest}}Repository state:
{{.StateDigest}}{{end}}`,
		},
		{
			Role:    "user",
			Content: "{{.Utterance}}",
		},
	}
}

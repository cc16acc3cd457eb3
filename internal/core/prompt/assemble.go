package prompt

import (
	"fmt"
	"strings"

	"grounded-qa/config"
	"grounded-qa/internal/core/retriever"
	"grounded-qa/pkg/apperror"
	"grounded-qa/pkg/apperror/status"
)

// FragmentSeparator joins the highlighted fragments of one hit.
const FragmentSeparator = "\n --- \n"

const promptTemplate = `
Instructions:

- You are an assistant for question-answering tasks.
- Answer questions truthfully and factually using only the context presented.
- If you don't know the answer, just say that you don't know, don't make up an answer.
- Use markdown format for code examples.
- You are correct, factual, precise, and reliable.

Context:
%s
`

// Assembler turns search hits into the system prompt sent to the model.
type Assembler struct {
	fields map[string]string
}

// NewAssembler takes the index -> primary text field map used for hits that
// come back without highlights.
func NewAssembler(fields map[string]string) *Assembler {
	return &Assembler{fields: fields}
}

// BuildContext concatenates the hits in order. Highlighted hits contribute
// their fragments joined by FragmentSeparator and nothing else, so two
// highlighted hits in a row run together. Other hits contribute
// "[i] <primary field>\n" with i counted over all hits from 1.
func (a *Assembler) BuildContext(hits []retriever.Hit) (string, error) {
	var b strings.Builder
	for i, hit := range hits {
		if hit.HasHighlight {
			var fragments []string
			for _, f := range hit.Highlight {
				fragments = append(fragments, f.Fragments...)
			}
			b.WriteString(strings.Join(fragments, FragmentSeparator))
			continue
		}

		field, ok := a.fields[hit.Index]
		if !ok {
			return "", fmt.Errorf("%v: %w", config.ModulePrompt, apperror.UnknownIndex(hit.Index))
		}
		value, ok := hit.Source[field]
		if !ok {
			return "", apperror.Malformed(status.PromptSourceFieldMissing, "%v: hit %d from %q has no _source.%s", config.ModulePrompt, i+1, hit.Index, field)
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, sourceText(value))
	}
	return b.String(), nil
}

// sourceText renders a _source value the way the documents were indexed:
// null and booleans as None/True/False, everything else through %v.
func sourceText(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Assemble builds the full grounding prompt. An empty hit list yields the
// instructions with an empty context section.
func (a *Assembler) Assemble(hits []retriever.Hit) (string, error) {
	ctx, err := a.BuildContext(hits)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, ctx), nil
}

package interfaces

import (
	"io"
)

// TemplateRenderer is the contract the generator renders layouts through.
// Implementations receive the layout name plus the page context and either
// return the rendered string or stream into the optional writer.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

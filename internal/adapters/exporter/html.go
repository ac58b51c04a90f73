package exporter

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/ports"
)

//go:embed assets/page.html.tmpl assets/style.css assets/viewer.js
var assets embed.FS

var (
	pageTemplate = template.Must(template.ParseFS(assets, "assets/page.html.tmpl"))
	pageStyles   = template.CSS(mustReadAsset("assets/style.css"))
	pageScript   = template.JS(mustReadAsset("assets/viewer.js"))
)

func mustReadAsset(name string) string {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("exporter: missing embedded asset %s: %v", name, err))
	}
	return string(data)
}

// HTMLOption настраивает HTMLExporter.
type HTMLOption func(*HTMLExporter)

// WithViewerEndpoint задает путь websocket, через который страница отправляет
// взаимодействия с просмотрщиком на сервер. Без него переходы выполняются в браузере.
func WithViewerEndpoint(path string) HTMLOption {
	return func(e *HTMLExporter) {
		e.viewerEndpoint = path
	}
}

// HTMLExporter выводит страницу чата одним HTML-документом со встроенными стилями и скриптом.
// Весь текст из блоков проходит контекстное экранирование html/template.
type HTMLExporter struct {
	viewerEndpoint string
}

// NewHTMLExporter создает новый экземпляр HTMLExporter.
func NewHTMLExporter(opts ...HTMLOption) ports.Exporter {
	e := &HTMLExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pageData struct {
	domain.Page
	Styles         template.CSS
	Script         template.JS
	ViewerEndpoint string
	Standalone     bool
}

// Export записывает страницу в w.
func (e *HTMLExporter) Export(w io.Writer, page domain.Page) error {
	data := pageData{
		Page:           page,
		Styles:         pageStyles,
		Script:         pageScript,
		ViewerEndpoint: e.viewerEndpoint,
		Standalone:     e.viewerEndpoint == "",
	}
	if err := pageTemplate.ExecuteTemplate(w, "page.html.tmpl", data); err != nil {
		return fmt.Errorf("failed to render html page: %w", err)
	}
	return nil
}

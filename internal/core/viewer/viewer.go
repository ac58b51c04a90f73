// Package viewer содержит полноэкранный просмотрщик вложений.
// Просмотрщик - явное значение состояния и таблица переходов по видам взаимодействий.
package viewer

import (
	"errors"
	"fmt"

	"whatsapp-chat-viewer/internal/domain"
)

var (
	ErrNotViewable        = errors.New("media kind cannot be opened in viewer")
	ErrNotInCatalog       = errors.New("media url is not in catalog")
	ErrUnknownInteraction = errors.New("unknown interaction")
)

// EscapeKey - клавиша, закрывающая открытый просмотрщик.
const EscapeKey = "Escape"

// InteractionKind - вид взаимодействия пользователя с просмотрщиком.
type InteractionKind string

const (
	MediaActivated      InteractionKind = "media_activated"
	CloseActivated      InteractionKind = "close_activated"
	BackgroundActivated InteractionKind = "background_activated"
	KeyPressed          InteractionKind = "key_pressed"
	PlaybackChanged     InteractionKind = "playback_changed"
)

// Interaction - одно событие от поверхности отображения.
// Заполненные поля зависят от Kind.
type Interaction struct {
	Kind      InteractionKind  `json:"kind"`
	URL       string           `json:"url,omitempty"`
	Media     domain.MediaKind `json:"media,omitempty"`
	Key       string           `json:"key,omitempty"`
	OnSurface bool             `json:"on_surface,omitempty"`
	Playing   bool             `json:"playing,omitempty"`
}

// ImageSurface - поверхность для изображения.
type ImageSurface struct {
	Src     string `json:"src"`
	Visible bool   `json:"visible"`
}

// VideoSurface - поверхность для видео.
type VideoSurface struct {
	Src     string `json:"src"`
	Visible bool   `json:"visible"`
	Playing bool   `json:"playing"`
}

// State - полное состояние просмотрщика. Нулевое значение соответствует закрытому просмотрщику.
type State struct {
	Open    bool             `json:"open"`
	Image   ImageSurface     `json:"image"`
	Video   VideoSurface     `json:"video"`
	Current *domain.MediaRef `json:"current,omitempty"`
}

// Closed возвращает начальное состояние.
func Closed() State {
	return State{}
}

type transition func(v *Viewer, in Interaction) (State, error)

var transitions = map[InteractionKind]transition{
	MediaActivated:      (*Viewer).activate,
	CloseActivated:      (*Viewer).close,
	BackgroundActivated: (*Viewer).background,
	KeyPressed:          (*Viewer).key,
	PlaybackChanged:     (*Viewer).playback,
}

// Viewer владеет состоянием одного просмотрщика. Не безопасен для параллельного
// использования: у каждого соединения свой экземпляр.
type Viewer struct {
	catalog domain.MediaCatalog
	state   State
}

// NewViewer создает закрытый просмотрщик для каталога одного прохода рендеринга.
func NewViewer(catalog domain.MediaCatalog) *Viewer {
	return &Viewer{catalog: catalog, state: Closed()}
}

// State возвращает текущее состояние.
func (v *Viewer) State() State {
	return v.state
}

// Handle применяет взаимодействие. При ошибке состояние не меняется.
func (v *Viewer) Handle(in Interaction) (State, error) {
	t, ok := transitions[in.Kind]
	if !ok {
		return v.state, fmt.Errorf("%w: %q", ErrUnknownInteraction, in.Kind)
	}

	next, err := t(v, in)
	if err != nil {
		return v.state, err
	}
	v.state = next
	return next, nil
}

func (v *Viewer) activate(in Interaction) (State, error) {
	if !in.Media.Viewable() {
		return State{}, fmt.Errorf("%w: %s", ErrNotViewable, in.Media)
	}

	ref, ok := v.catalog.Lookup(in.URL)
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrNotInCatalog, in.URL)
	}
	if ref.Kind != in.Media {
		return State{}, fmt.Errorf("%w: %s is %s", ErrNotViewable, in.URL, ref.Kind)
	}

	next := State{Open: true, Current: &ref}
	switch ref.Kind {
	case domain.MediaImage:
		next.Image = ImageSurface{Src: ref.URL, Visible: true}
	case domain.MediaVideo:
		next.Video = VideoSurface{Src: ref.URL, Visible: true}
	}
	return next, nil
}

func (v *Viewer) close(Interaction) (State, error) {
	return Closed(), nil
}

func (v *Viewer) background(in Interaction) (State, error) {
	if in.OnSurface {
		return v.state, nil
	}
	return Closed(), nil
}

func (v *Viewer) key(in Interaction) (State, error) {
	if v.state.Open && in.Key == EscapeKey {
		return Closed(), nil
	}
	return v.state, nil
}

func (v *Viewer) playback(in Interaction) (State, error) {
	if !v.state.Open || !v.state.Video.Visible {
		return v.state, nil
	}
	next := v.state
	next.Video.Playing = in.Playing
	return next, nil
}

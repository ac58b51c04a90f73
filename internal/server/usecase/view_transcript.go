package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"whatsapp-chat-viewer/internal/cache"
	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/pkg/config"
	"whatsapp-chat-viewer/internal/ports"
)

// ViewTranscriptUseCase загружает транскрипт и строит по нему страницу.
// Каждый вызов загружает источник заново; повторный разбор неизменных данных
// пропускается благодаря кэшу по хешу содержимого.
type ViewTranscriptUseCase struct {
	viewer     config.Viewer
	cacheTTL   time.Duration
	source     ports.DataSource
	parser     ports.Parser
	renderer   ports.Renderer
	cacheStore *cache.CacheStore
}

// NewViewTranscriptUseCase создает новый экземпляр ViewTranscriptUseCase.
func NewViewTranscriptUseCase(
	cfg *config.Config,
	source ports.DataSource,
	parser ports.Parser,
	renderer ports.Renderer,
	cacheStore *cache.CacheStore,
) *ViewTranscriptUseCase {
	return &ViewTranscriptUseCase{
		viewer:     cfg.Viewer,
		cacheTTL:   cfg.Cache.TTL,
		source:     source,
		parser:     parser,
		renderer:   renderer,
		cacheStore: cacheStore,
	}
}

// LoadTranscript получает и разбирает транскрипт. Любая ошибка фатальна для представления.
func (uc *ViewTranscriptUseCase) LoadTranscript(ctx context.Context) (domain.Transcript, error) {
	transcript, _, err := uc.load(ctx)
	return transcript, err
}

// load возвращает транскрипт вместе с хешем исходных данных, который служит его версией.
func (uc *ViewTranscriptUseCase) load(ctx context.Context) (domain.Transcript, string, error) {
	data, err := uc.source.Fetch(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось загрузить транскрипт %s: %w", uc.viewer.TranscriptPath, err)
	}

	hash := cache.CalculateHash(data)
	if cachedItem, found := uc.cacheStore.Get(hash); found {
		slog.Debug("Попадание в кеш", "hash", hash)
		return cachedItem.Data, hash, nil
	}

	transcript, err := uc.parser.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось разобрать транскрипт %s: %w", uc.viewer.TranscriptPath, err)
	}
	slog.Info("Разобран транскрипт", "path", uc.viewer.TranscriptPath, "message_count", len(transcript))

	uc.cacheStore.Put(hash, transcript, uc.cacheTTL)
	return transcript, hash, nil
}

// BuildPage загружает транскрипт и выполняет проход рендеринга.
func (uc *ViewTranscriptUseCase) BuildPage(ctx context.Context) (domain.Page, error) {
	transcript, hash, err := uc.load(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	return uc.page(transcript, hash), nil
}

// PageForVersion строит страницу по версии транскрипта, которую клиент уже получил.
// Если версии нет в кеше (истек TTL), страница строится по текущему содержимому источника.
func (uc *ViewTranscriptUseCase) PageForVersion(ctx context.Context, version string) (domain.Page, error) {
	if version != "" {
		if cachedItem, found := uc.cacheStore.Get(version); found {
			return uc.page(cachedItem.Data, version), nil
		}
		slog.Debug("Версия транскрипта не найдена в кеше", "version", version)
	}
	return uc.BuildPage(ctx)
}

func (uc *ViewTranscriptUseCase) page(transcript domain.Transcript, version string) domain.Page {
	blocks := uc.renderer.Render(transcript, uc.viewer.CurrentUserName, uc.viewer.MediaBasePath)
	return domain.Page{
		Title:   uc.viewer.Title,
		Version: version,
		Blocks:  blocks,
		Catalog: domain.BuildMediaCatalog(blocks),
	}
}

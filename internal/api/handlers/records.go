// records.go — обработчики операций с записями телефонов:
// чтение слитого представления, multipart-обновление (метаданные + фотографии),
// отдача файлов фотографий.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/UmanetAlexandru/pro-assist/internal/api/errors"
	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
	"github.com/UmanetAlexandru/pro-assist/internal/phone"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/paths"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/photostore"
)

// Имена частей multipart-запроса обновления записи.
const (
	partInfo   = "info"
	partPhotos = "photos"
)

// GetRecord обрабатывает GET /records/{phone}.
// Отсутствие записи — не 404: возвращается представление без метаданных
// (ключ валиден, данных по нему пока нет).
func (h *APIHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rawPhone := pathParam(r, "phone")

	view, err := h.storage.Get(r.Context(), rawPhone)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// UpsertRecord обрабатывает POST /records/{phone} (multipart/form-data).
//
// Части запроса:
//   - info   — JSON с метаданными записи (опционально)
//   - photos — файлы фотографий, image/* (опционально, несколько)
//
// Запрос без обеих частей допустим и приводит только к созданию
// директорий записи.
func (h *APIHandler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	rawPhone := pathParam(r, "phone")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.ValidationError(w, "Превышен максимальный размер запроса")
			return
		}
		apierrors.ValidationError(w, "Некорректный multipart-запрос")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	// Часть info: JSON метаданных
	var info *model.PhoneInfo
	if raw := r.FormValue(partInfo); raw != "" {
		info = &model.PhoneInfo{}
		if err := json.Unmarshal([]byte(raw), info); err != nil {
			apierrors.ValidationError(w, "Некорректный JSON в части info")
			return
		}
		if err := info.Validate(); err != nil {
			apierrors.ValidationError(w, err.Error())
			return
		}
	}

	// Части photos: открываем файлы и собираем загрузки
	var uploads []photostore.Upload
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File[partPhotos]
		uploads = make([]photostore.Upload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				apierrors.ValidationError(w, "Не удалось прочитать загружаемый файл")
				return
			}
			defer f.Close()

			uploads = append(uploads, photostore.Upload{
				Reader:           f,
				Size:             fh.Size,
				ContentType:      fh.Header.Get("Content-Type"),
				OriginalFilename: fh.Filename,
			})
		}
	}

	view, err := h.storage.Upsert(r.Context(), rawPhone, info, uploads)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// GetPhoto обрабатывает GET /records/{phone}/photos/{fileName}.
// Путь файла проходит проверку на выход за пределы директории записи;
// отсутствующий файл — 404.
func (h *APIHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	rawPhone := pathParam(r, "phone")
	fileName := pathParam(r, "fileName")

	path, err := h.storage.ResolvePhoto(rawPhone, fileName)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		apierrors.NotFound(w, "Фотография не найдена")
		return
	}

	http.ServeFile(w, r, path)
}

// pathParam возвращает URL-параметр chi с декодированием percent-escape:
// chi отдаёт сегменты сырого пути, когда запрос содержит escape-последовательности.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// writeServiceError отображает ошибки сервисного слоя на HTTP-ответы:
//   - некорректный телефон, выход за пределы директории — 400
//   - неподдерживаемый тип содержимого — 415
//   - остальное — 500 (детали только в лог)
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, phone.ErrInvalidPhone):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, paths.ErrPathTraversal):
		apierrors.ValidationError(w, "Недопустимое имя файла")
	case errors.Is(err, photostore.ErrUnsupportedMedia):
		apierrors.UnsupportedMediaType(w, err.Error())
	default:
		h.logger.Error("Внутренняя ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

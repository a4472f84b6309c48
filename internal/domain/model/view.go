// view.go — агрегированное read-only представление записи телефона.
package model

import "time"

// PhotoRef — ссылка на фотографию записи.
type PhotoRef struct {
	// FileName — имя файла в директории фотографий
	FileName string `json:"fileName"`
	// URL — путь получения файла через HTTP API
	URL string `json:"url"`
}

// RecordView — слияние метаданных и списка фотографий для одного ключа.
// Вычисляется по требованию, не персистится. Метаданные могут отсутствовать
// для ключа, у которого есть только фотографии, и наоборот.
type RecordView struct {
	// Phone — нормализованный ключ записи
	Phone string `json:"phone"`
	// Info — метаданные записи, nil если запись не создавалась
	Info *PhoneInfo `json:"info"`
	// CreatedAt — время создания записи метаданных
	CreatedAt *time.Time `json:"createdAt"`
	// UpdatedAt — время последнего обновления метаданных
	UpdatedAt *time.Time `json:"updatedAt"`
	// Photos — отсортированный по имени список фотографий
	Photos []PhotoRef `json:"photos"`
}

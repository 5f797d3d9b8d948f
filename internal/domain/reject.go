package domain

import "errors"

// ErrMediaNotFound — провайдер не нашёл видео или плейлист по идентификатору.
var ErrMediaNotFound = errors.New("видео не найдено")

// RejectReason — закрытый перечень причин отказа при добавлении заявки.
// Отказы — ожидаемые бизнес-исходы, а не ошибки: они агрегируются
// в один ответ пользователю и никогда не логируются как сбои.
type RejectReason string

const (
	// RejectQuotaExceeded — у заказчика исчерпана квота заявок.
	RejectQuotaExceeded RejectReason = "quota_exceeded"
	// RejectAlreadyQueued — видео уже стоит в очереди канала.
	RejectAlreadyQueued RejectReason = "already_queued"
	// RejectBlacklisted — видео в чёрном списке канала.
	RejectBlacklisted RejectReason = "blacklisted"
	// RejectTooSoon — видео запрашивали недавно, окно подавления не истекло.
	RejectTooSoon RejectReason = "too_soon"
	// RejectRegionRestricted — видео недоступно в регионе канала.
	RejectRegionRestricted RejectReason = "region_restricted"
	// RejectTooLong — видео длиннее лимита канала.
	RejectTooLong RejectReason = "too_long"
	// RejectNotEmbeddable — владелец запретил встраивание видео.
	RejectNotEmbeddable RejectReason = "not_embeddable"
	// RejectUnresolvable — ссылку не удалось разрешить в видео.
	RejectUnresolvable RejectReason = "unresolvable"
)

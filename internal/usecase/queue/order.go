package queue

// Схема сортировочных ключей очереди: обычные заявки получают ключи
// от 200000 с шагом 100000, голова после скипа принудительно 100000,
// продвинутые заявки — убывающие ключи ниже базы вставки.
const (
	// BaseSortKey — ключ первой заявки в пустой очереди и головы после скипа.
	BaseSortKey = 100000
	// SortKeyStep — шаг между ключами при вставке и перетасовке.
	SortKeyStep = 100000
	// PromotionKeyReset — значение счётчика продвижения после скипа.
	PromotionKeyReset = 199999
	// InitialPromotionKey — счётчик продвижения нового канала, ниже базы вставки.
	InitialPromotionKey = 99999
	// ShuffleFloor — минимальный ключ заявки, участвующей в перетасовке.
	ShuffleFloor = 200000
)

// NextInsertKey возвращает ключ для вставки в конец очереди.
func NextInsertKey(maxKey int, empty bool) int {
	if empty {
		return BaseSortKey
	}
	return maxKey + SortKeyStep
}

// ShuffleKey возвращает ключ i-й заявки после перетасовки: от 200000 с шагом 100000.
func ShuffleKey(i int) int {
	return (i + 2) * SortKeyStep
}

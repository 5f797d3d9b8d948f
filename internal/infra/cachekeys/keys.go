// Package cachekeys задаёт ключи списочных кэшей в Redis.
// Мутации очереди и команд сбрасывают эти ключи, HTTP API читает их
// по схеме read-through.
package cachekeys

// Songlist — ключ кэша живой очереди канала.
func Songlist(channel string) string {
	return channel + "songlist"
}

// Songcache — ключ кэша недавно запрошенных видео канала.
func Songcache(channel string) string {
	return channel + "songcache"
}

// Blacklist — ключ кэша чёрного списка канала.
func Blacklist(channel string) string {
	return channel + "blacklist"
}

// Commands — ключ кэша списка команд канала.
func Commands(channel string) string {
	return channel + "commands"
}

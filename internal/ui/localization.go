package ui

// Localization manages console text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyDone              = "done"
	KeyFailed            = "failed"
	KeyWarning           = "warning"
	KeyMerging           = "merging"
	KeySummary           = "summary"
	KeyFailedItems       = "failed_items"
	KeyQueued            = "queued"
	KeyExpandingPlaylist = "expanding_playlist"
	KeyPlaylistExpanded  = "playlist_expanded"
	KeyStopping          = "stopping"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyInvalidURL        = "invalid_url"
	KeySettingsSaved     = "settings_saved"
	KeyTrackAudio        = "track_audio"
	KeyTrackVideo        = "track_video"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" || lang == "" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyDone:              "Done",
		KeyFailed:            "Failed",
		KeyWarning:           "Warning",
		KeyMerging:           "Merging",
		KeySummary:           "%d downloaded, %d failed",
		KeyFailedItems:       "Failed downloads:",
		KeyQueued:            "Queued %d URLs",
		KeyExpandingPlaylist: "Expanding playlist",
		KeyPlaylistExpanded:  "Playlist %q: %d videos",
		KeyStopping:          "Stopping download...",
		KeyErrorOpeningFile:  "Error opening file",
		KeyInvalidURL:        "Invalid URL",
		KeySettingsSaved:     "Settings saved",
		KeyTrackAudio:        "audio",
		KeyTrackVideo:        "video",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyDone:              "Готово",
		KeyFailed:            "Ошибка",
		KeyWarning:           "Внимание",
		KeyMerging:           "Сборка",
		KeySummary:           "скачано: %d, ошибок: %d",
		KeyFailedItems:       "Не удалось скачать:",
		KeyQueued:            "В очереди: %d",
		KeyExpandingPlaylist: "Разбор плейлиста",
		KeyPlaylistExpanded:  "Плейлист %q: %d видео",
		KeyStopping:          "Остановка загрузки...",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyInvalidURL:        "Неверный URL",
		KeySettingsSaved:     "Настройки сохранены",
		KeyTrackAudio:        "аудио",
		KeyTrackVideo:        "видео",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyDone:              "Concluído",
		KeyFailed:            "Falhou",
		KeyWarning:           "Aviso",
		KeyMerging:           "Mesclando",
		KeySummary:           "%d baixados, %d com falha",
		KeyFailedItems:       "Downloads com falha:",
		KeyQueued:            "%d URLs na fila",
		KeyExpandingPlaylist: "Expandindo playlist",
		KeyPlaylistExpanded:  "Playlist %q: %d vídeos",
		KeyStopping:          "Parando download...",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyInvalidURL:        "URL inválida",
		KeySettingsSaved:     "Configurações salvas",
		KeyTrackAudio:        "áudio",
		KeyTrackVideo:        "vídeo",
	}
}

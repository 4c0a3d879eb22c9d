package ui

import "github.com/desertthunder/moodtune/internal/models"

type phrase int

const (
	phPrompt phrase = iota
	phPlaceholder
	phTooShort
	phTooLong
	phLoading
	phListening
	phNoTracks
	phNoPreview
	phRetry
	phErrorTitle
	phExporting
	phExported
	phExportOff
	phExportLogin
	phExportExpired
	phExportFailed
	phVoiceOff
	phVoiceDenied
	phVoiceSilent
	phVoiceFailed
	phCached
	phPlaybackFailed
)

var phrases = map[models.Language]map[phrase]string{
	models.English: {
		phPrompt:         "How are you feeling?",
		phPlaceholder:    "e.g. a calm rainy evening reading by the window",
		phTooShort:       "Tell me a bit more (at least 10 characters)",
		phTooLong:        "That is too long (500 characters max)",
		phLoading:        "Finding music for your mood...",
		phListening:      "Listening...",
		phNoTracks:       "No tracks found for this mood",
		phNoPreview:      "no preview",
		phRetry:          "Press enter to retry or / for a new search",
		phErrorTitle:     "Something went wrong",
		phExporting:      "Creating your Deezer playlist...",
		phExported:       "Saved to Deezer: %s (o to open)",
		phExportOff:      "Deezer export is not configured",
		phExportLogin:    "Connect Deezer first: moodtune deezer auth",
		phExportExpired:  "Your Deezer session expired: moodtune deezer auth",
		phExportFailed:   "Could not create the playlist, try again",
		phVoiceOff:       "Voice input is not available",
		phVoiceDenied:    "Microphone access was denied",
		phVoiceSilent:    "No speech detected, try again",
		phVoiceFailed:    "Voice input failed",
		phCached:         "from cache",
		phPlaybackFailed: "Could not play this preview",
	},
	models.Spanish: {
		phPrompt:         "¿Cómo te sientes?",
		phPlaceholder:    "p. ej. una tarde tranquila de lluvia leyendo junto a la ventana",
		phTooShort:       "Cuéntame un poco más (mínimo 10 caracteres)",
		phTooLong:        "Es demasiado largo (máximo 500 caracteres)",
		phLoading:        "Buscando música para tu estado de ánimo...",
		phListening:      "Escuchando...",
		phNoTracks:       "No se encontraron canciones para este estado de ánimo",
		phNoPreview:      "sin vista previa",
		phRetry:          "Pulsa enter para reintentar o / para una nueva búsqueda",
		phErrorTitle:     "Algo salió mal",
		phExporting:      "Creando tu playlist en Deezer...",
		phExported:       "Guardada en Deezer: %s (o para abrir)",
		phExportOff:      "La exportación a Deezer no está configurada",
		phExportLogin:    "Conecta Deezer primero: moodtune deezer auth",
		phExportExpired:  "Tu sesión de Deezer expiró: moodtune deezer auth",
		phExportFailed:   "No se pudo crear la playlist, inténtalo de nuevo",
		phVoiceOff:       "La entrada por voz no está disponible",
		phVoiceDenied:    "Se denegó el acceso al micrófono",
		phVoiceSilent:    "No se detectó voz, inténtalo de nuevo",
		phVoiceFailed:    "Falló la entrada por voz",
		phCached:         "desde caché",
		phPlaybackFailed: "No se pudo reproducir esta vista previa",
	},
}

func text(lang models.Language, p phrase) string {
	if s, ok := phrases[lang][p]; ok {
		return s
	}
	return phrases[models.English][p]
}

package menu

import (
	"fmt"
	"strings"
)

// Component ids rendered by the presenter.
const (
	CategoryPrefix    = "category_"
	SubcategorySelect = "subcategory_select"
	LinkSelect        = "link_select"
)

// User-facing texts.
const (
	TextSubcategories = "📂 Subcategorías de %s:"
	TextPickSubcat    = "➡️ Selecciona una subcategoría"
	TextLinks         = "🔗 Links de %s:"
	TextPickLink      = "➡️ Selecciona un link"
	TextNoLinks       = "⚠️ No hay links o archivos disponibles."
	TextStale         = "❌ La selección expiró, intenta de nuevo."
	TextError         = "❌ Ocurrió un error."
	TextDelivered     = "✅ Te envié los links y archivos por DM."
)

var rule = strings.Repeat("─", 28)

func welcomeText(botName string) string {
	return fmt.Sprintf("👋 ¡Hola! Bienvenido al panel %s:\n%s\nSelecciona una categoría para ver los links y archivos.\n%s",
		botName, rule, rule)
}

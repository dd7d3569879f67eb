package middlewares

import "net/http"

// Middleware es un decorador de http.Handler. La composición la hace el
// router (chi r.Use); acá viven solo los decoradores.
type Middleware func(http.Handler) http.Handler

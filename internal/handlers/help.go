package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type routeHelp struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// Help lists every registered route with the methods it accepts.
func (h HandlerSet) Help(routes func() gin.RoutesInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		byPath := map[string][]string{}
		for _, r := range routes() {
			byPath[r.Path] = append(byPath[r.Path], r.Method)
		}

		out := make([]routeHelp, 0, len(byPath))
		for path, methods := range byPath {
			sort.Strings(methods)
			out = append(out, routeHelp{Path: path, Methods: methods})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

		c.JSON(http.StatusOK, gin.H{"data": out})
	}
}

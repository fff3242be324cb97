// Package report is the read-only reporting surface: it lists algorithm
// identities found under the data directory and serves each one's full
// trade history, archive and current day merged, newest first. It never
// writes ledger state.
package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hourly-trading-bot/internal/ledger"
)

type Server struct {
	dataDir string
	loc     *time.Location
}

func NewServer(dataDir string, loc *time.Location) *Server {
	return &Server{dataDir: dataDir, loc: loc}
}

// Router builds the gin engine with the read-only API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/algorithms", s.handleAlgorithms)
		api.GET("/algorithms/:algorithm/trades", s.handleTrades)
	}
	return r
}

func (s *Server) handleAlgorithms(c *gin.Context) {
	ids, err := ledger.ListIdentities(s.dataDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"algorithms": ids})
}

func (s *Server) handleTrades(c *gin.Context) {
	algorithm := c.Param("algorithm")
	trades, err := ledger.ReadTrades(s.dataDir, algorithm, s.loc)
	if err != nil {
		var perr *ledger.PersistenceError
		if errors.As(err, &perr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger unreadable", "detail": perr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"algorithm": algorithm, "trades": trades})
}

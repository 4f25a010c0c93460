// Package memory implementa los repositorios de inventario sobre un estado en memoria
// con transacciones serializadas. Se usa en pruebas y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

type state struct {
	articles  map[string]*entity.Article
	stocks    map[string]*entity.Stock // clave company|article
	lots      map[string]*entity.StockLot
	movements []*entity.StockMovement
	alerts    map[string]*entity.StockAlert
	alertSeq  []string // orden de creación
}

func newState() *state {
	return &state{
		articles: map[string]*entity.Article{},
		stocks:   map[string]*entity.Stock{},
		lots:     map[string]*entity.StockLot{},
		alerts:   map[string]*entity.StockAlert{},
	}
}

// cloneLedger copia las tablas que modifican las transacciones (agregados, lotes, movimientos).
func (s *state) cloneLedger() *state {
	c := &state{
		articles:  s.articles,
		stocks:    make(map[string]*entity.Stock, len(s.stocks)),
		lots:      make(map[string]*entity.StockLot, len(s.lots)),
		movements: make([]*entity.StockMovement, len(s.movements), len(s.movements)+4),
		alerts:    s.alerts,
		alertSeq:  s.alertSeq,
	}
	for k, v := range s.stocks {
		c.stocks[k] = v.Clone()
	}
	for k, v := range s.lots {
		c.lots[k] = v.Clone()
	}
	copy(c.movements, s.movements)
	return c
}

func stockKey(companyID, articleID string) string {
	return companyID + "|" + articleID
}

// Store estado compartido por los repositorios en memoria.
// Las transacciones se serializan con txMu: trabajan sobre una copia del libro
// y la publican al confirmar.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	cur  *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{cur: newState()}
}

// AddArticle registra un artículo del catálogo (el catálogo es externo a este servicio).
func (s *Store) AddArticle(a *entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.articles[a.ID] = cloneArticle(a)
}

// read ejecuta fn sobre el estado de la tx o, sin tx, sobre el estado publicado.
func (s *Store) read(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.cur)
}

// writeLedger modifica agregados, lotes o movimientos. Sin tx se comporta como
// una transacción de una sola sentencia.
func (s *Store) writeLedger(ctx context.Context, tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	return s.runTx(ctx, fn)
}

// writeAlerts modifica la tabla de alertas, que no participa de las transacciones del libro.
func (s *Store) writeAlerts(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cur)
}

func (s *Store) runTx(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.cur.cloneLedger()
	s.mu.RUnlock()

	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur.stocks = staged.stocks
	s.cur.lots = staged.lots
	s.cur.movements = staged.movements
	s.mu.Unlock()
	return nil
}

func cloneArticle(a *entity.Article) *entity.Article {
	c := *a
	if a.Category != nil {
		cat := *a.Category
		c.Category = &cat
	}
	return &c
}

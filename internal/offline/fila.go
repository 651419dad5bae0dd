// Package offline guarda rascunhos de OS que não puderam ser enviados
// e os reenvia em lote quando a API volta a responder.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

// ChavePadrao é o hash Redis onde os rascunhos ficam guardados
const ChavePadrao = "os_rascunhos"

// RascunhoPendente é um rascunho guardado localmente aguardando sincronização
type RascunhoPendente struct {
	Ordem      models.OrdemRequest `json:"ordem"`
	SyncStatus models.StatusSync   `json:"sync_status"`
	SalvoEm    time.Time           `json:"salvo_em"`
	Erro       string              `json:"erro,omitempty"`
}

// Sincronizador envia um lote de rascunhos para a API
type Sincronizador interface {
	Sincronizar(ctx context.Context, alteracoes []models.OrdemRequest) (models.ResultadoSync, error)
}

// Fila persiste rascunhos em um hash Redis indexado pelo id da OS
type Fila struct {
	rdb    redis.Cmdable
	chave  string
	logger *logrus.Logger
	agora  func() time.Time
}

// NovaFila cria a fila sobre o cliente Redis informado
func NovaFila(rdb redis.Cmdable, chave string, logger *logrus.Logger) *Fila {
	if chave == "" {
		chave = ChavePadrao
	}
	return &Fila{rdb: rdb, chave: chave, logger: logger, agora: time.Now}
}

// Enfileirar guarda o rascunho como pendente sem contatar a API.
// Rascunhos sem id recebem um UUID, que será o id da OS no servidor.
func (f *Fila) Enfileirar(ctx context.Context, ordem models.OrdemRequest) (string, error) {
	if ordem.ID == "" {
		ordem.ID = uuid.NewString()
	}

	rascunho := RascunhoPendente{
		Ordem:      ordem,
		SyncStatus: models.SyncPending,
		SalvoEm:    f.agora().UTC(),
	}
	if err := f.gravar(ctx, rascunho); err != nil {
		return "", err
	}

	f.logger.WithField("ordem_id", ordem.ID).Info("Rascunho guardado para sincronização")
	return ordem.ID, nil
}

// Pendentes retorna os rascunhos guardados, do mais antigo ao mais recente
func (f *Fila) Pendentes(ctx context.Context) ([]RascunhoPendente, error) {
	rascunhos, _, err := f.ler(ctx)
	return rascunhos, err
}

// ler devolve também o valor bruto de cada entrada, usado como versão no envio
func (f *Fila) ler(ctx context.Context) ([]RascunhoPendente, map[string]string, error) {
	valores, err := f.rdb.HGetAll(ctx, f.chave).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao ler fila offline: %w", err)
	}

	rascunhos := make([]RascunhoPendente, 0, len(valores))
	for id, v := range valores {
		var r RascunhoPendente
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			f.logger.WithError(err).WithField("ordem_id", id).Warn("Rascunho ilegível ignorado")
			continue
		}
		rascunhos = append(rascunhos, r)
	}

	sort.Slice(rascunhos, func(i, j int) bool {
		if rascunhos[i].SalvoEm.Equal(rascunhos[j].SalvoEm) {
			return rascunhos[i].Ordem.ID < rascunhos[j].Ordem.ID
		}
		return rascunhos[i].SalvoEm.Before(rascunhos[j].SalvoEm)
	})
	return rascunhos, valores, nil
}

// Remover descarta um rascunho da fila
func (f *Fila) Remover(ctx context.Context, id string) error {
	if err := f.rdb.HDel(ctx, f.chave, id).Err(); err != nil {
		return fmt.Errorf("erro ao remover rascunho %s: %w", id, err)
	}
	return nil
}

// Enviar sincroniza todos os rascunhos guardados.
// Os aplicados saem da fila; os rejeitados ficam marcados como conflito com o erro recebido.
// Rascunhos salvos de novo durante o envio são mantidos como estão.
// Se o envio falhar por completo a fila permanece intacta.
func (f *Fila) Enviar(ctx context.Context, s Sincronizador) (models.ResultadoSync, error) {
	vazio := models.ResultadoSync{Applied: []string{}, Conflicts: []models.ConflitoSync{}}

	pendentes, versoes, err := f.ler(ctx)
	if err != nil {
		return vazio, err
	}
	if len(pendentes) == 0 {
		return vazio, nil
	}

	alteracoes := make([]models.OrdemRequest, len(pendentes))
	porID := make(map[string]RascunhoPendente, len(pendentes))
	for i, p := range pendentes {
		alteracoes[i] = p.Ordem
		porID[p.Ordem.ID] = p
	}

	resultado, err := s.Sincronizar(ctx, alteracoes)
	if err != nil {
		return vazio, fmt.Errorf("erro ao sincronizar rascunhos: %w", err)
	}

	mantidos := 0
	for _, id := range resultado.Applied {
		ok, err := f.trocarSeIgual(ctx, id, versoes[id], "")
		if err != nil {
			return resultado, err
		}
		if !ok {
			mantidos++
		}
	}
	for _, c := range resultado.Conflicts {
		r, existe := porID[c.ID]
		if !existe {
			continue
		}
		r.SyncStatus = models.SyncConflict
		r.Erro = c.Error
		b, err := json.Marshal(r)
		if err != nil {
			return resultado, fmt.Errorf("erro ao serializar rascunho: %w", err)
		}
		ok, err := f.trocarSeIgual(ctx, c.ID, versoes[c.ID], string(b))
		if err != nil {
			return resultado, err
		}
		if !ok {
			mantidos++
		}
	}

	f.logger.WithFields(logrus.Fields{
		"aplicados": len(resultado.Applied),
		"conflitos": len(resultado.Conflicts),
		"mantidos":  mantidos,
	}).Info("Fila offline enviada")
	return resultado, nil
}

// trocaCondicional remove (ARGV[3] vazio) ou substitui o campo somente se
// ele ainda guarda o valor lido antes do envio.
var trocaCondicional = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
	return 0
end
if ARGV[3] == '' then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
end
return 1
`)

func (f *Fila) trocarSeIgual(ctx context.Context, id, anterior, novo string) (bool, error) {
	if anterior == "" {
		return false, nil
	}
	n, err := trocaCondicional.Run(ctx, f.rdb, []string{f.chave}, id, anterior, novo).Int()
	if err != nil {
		return false, fmt.Errorf("erro ao atualizar fila offline: %w", err)
	}
	if n == 0 {
		f.logger.WithField("ordem_id", id).Info("Rascunho alterado durante a sincronização, mantido")
	}
	return n == 1, nil
}

func (f *Fila) gravar(ctx context.Context, r RascunhoPendente) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("erro ao serializar rascunho: %w", err)
	}
	if err := f.rdb.HSet(ctx, f.chave, r.Ordem.ID, b).Err(); err != nil {
		return fmt.Errorf("erro ao gravar rascunho %s: %w", r.Ordem.ID, err)
	}
	return nil
}

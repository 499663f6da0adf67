package seed

import (
	"fmt"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/pkg/domain"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// GenerateOptions sizes the generated snapshot. Count is the number of
// supporters; the other tables scale from it. A zero RandomSeed draws a random
// seed.
type GenerateOptions struct {
	Count      int
	RandomSeed int64
}

var (
	cidades     = []string{"Campo Grande", "Dourados", "Três Lagoas", "Corumbá", "Ponta Porã"}
	categorias  = []string{"Infraestrutura", "Saúde", "Educação", "Segurança", "Esporte"}
	prioridades = []string{"Alta", "Média", "Baixa"}
	statusDem   = []string{"Aberta", "Em andamento", "Concluída"}
	tiposEvento = []string{"Reunião", "Ação social", "Caminhada", "Comício"}
	tags        = []string{"saude", "educacao", "esporte", "seguranca", "cultura"}
	partidos    = []string{"PXB", "PYZ", "PWK"}
)

const dateLayout = "2006-01-02"

var (
	rangeStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Generate builds a snapshot of synthetic but referentially consistent
// records. The same RandomSeed yields the same snapshot.
func Generate(opts GenerateOptions) memory.Snapshot {
	count := opts.Count
	if count <= 0 {
		count = 25
	}
	f := gofakeit.New(opts.RandomSeed)

	regioes := make([]domain.Regiao, 0, len(cidades))
	for i, cidade := range cidades {
		regioes = append(regioes, domain.Regiao{
			ID:        fmt.Sprintf("r%d", i+1),
			Nome:      "Região " + cidade,
			Cidade:    cidade,
			Estado:    "MS",
			Populacao: f.Number(20000, 900000),
		})
	}

	nLider := max(1, count/5)
	liderancas := make([]domain.Lideranca, 0, nLider)
	for i := 0; i < nLider; i++ {
		regiao := regioes[i%len(regioes)]
		liderancas = append(liderancas, domain.Lideranca{
			ID:           fmt.Sprintf("l%d", i+1),
			Nome:         f.Name(),
			Email:        f.Email(),
			Telefone:     f.Numerify("(67) 9####-####"),
			Cidade:       regiao.Cidade,
			RegiaoID:     regiao.ID,
			Status:       domain.StatusAtivo,
			DataCadastro: date(f),
		})
	}
	for i := range regioes {
		l := liderancas[i%len(liderancas)]
		regioes[i].Coordenador = &domain.Ref{ID: l.ID, Nome: l.Nome}
	}

	apoiadores := make([]domain.Apoiador, 0, count)
	for i := 0; i < count; i++ {
		l := &liderancas[i%len(liderancas)]
		l.TotalApoiadores++
		status := domain.StatusAtivo
		if f.Number(1, 10) <= 2 {
			status = domain.StatusInativo
		}
		apoiadores = append(apoiadores, domain.Apoiador{
			ID:               fmt.Sprintf("%d", i+1),
			Nome:             f.Name(),
			Email:            f.Email(),
			Telefone:         f.Numerify("(67) 9####-####"),
			Cidade:           l.Cidade,
			Bairro:           f.Street(),
			RegiaoID:         l.RegiaoID,
			Lideranca:        &domain.Ref{ID: l.ID, Nome: l.Nome},
			Status:           status,
			NivelEngajamento: f.Number(1, 5),
			DataCadastro:     date(f),
			Tags:             []string{f.RandomString(tags)},
		})
	}

	demandas := make([]domain.Demanda, 0, count/2)
	for i := 0; i < count/2; i++ {
		a := apoiadores[f.Number(0, len(apoiadores)-1)]
		demandas = append(demandas, domain.Demanda{
			ID:           fmt.Sprintf("d%d", i+1),
			Titulo:       f.Sentence(5),
			Descricao:    f.Sentence(12),
			Categoria:    f.RandomString(categorias),
			Prioridade:   f.RandomString(prioridades),
			Status:       f.RandomString(statusDem),
			Cidade:       a.Cidade,
			Solicitante:  &domain.Ref{ID: a.ID, Nome: a.Nome},
			Responsavel:  a.Lideranca,
			DataAbertura: date(f),
		})
	}

	eventos := make([]domain.Evento, 0, nLider)
	for i := 0; i < nLider; i++ {
		participantes := make([]domain.Ref, 0, 3)
		for j := 0; j < 3 && j < len(apoiadores); j++ {
			a := apoiadores[(i*3+j)%len(apoiadores)]
			participantes = append(participantes, domain.Ref{ID: a.ID, Nome: a.Nome})
		}
		eventos = append(eventos, domain.Evento{
			ID:            fmt.Sprintf("e%d", i+1),
			Titulo:        f.Sentence(4),
			Tipo:          f.RandomString(tiposEvento),
			Data:          date(f),
			Local:         f.Street(),
			Cidade:        f.RandomString(cidades),
			Status:        "Agendado",
			Capacidade:    f.Number(20, 500),
			Participantes: participantes,
		})
	}

	candidatos := make([]domain.Candidato, 0, len(partidos))
	endossos := make([]domain.Endosso, 0, len(partidos))
	for i, partido := range partidos {
		c := domain.Candidato{
			ID:      fmt.Sprintf("c%d", i+1),
			Nome:    f.Name(),
			Partido: partido,
			Numero:  f.Number(10000, 99999),
			Cargo:   "Vereador",
			Cidade:  f.RandomString(cidades),
			Status:  domain.StatusAtivo,
		}
		candidatos = append(candidatos, c)
		l := liderancas[i%len(liderancas)]
		endossos = append(endossos, domain.Endosso{
			ID:          fmt.Sprintf("en%d", i+1),
			CandidatoID: c.ID,
			Lideranca:   &domain.Ref{ID: l.ID, Nome: l.Nome},
			Tipo:        "Apoio público",
			Status:      "Confirmado",
			Data:        date(f),
		})
	}

	conversa := domain.ConversaIA{
		ID:        "cv1",
		Titulo:    f.Sentence(3),
		UsuarioID: "u1",
		CriadoEm:  rangeEnd.Format(time.RFC3339),
	}
	mensagens := []domain.MensagemIA{
		{ID: "m1", ConversacaoID: conversa.ID, Papel: "user", Conteudo: f.Question(), CriadoEm: conversa.CriadoEm},
		{ID: "m2", ConversacaoID: conversa.ID, Papel: "assistant", Conteudo: f.Sentence(10), CriadoEm: conversa.CriadoEm},
	}

	return memory.Snapshot{
		Tables: map[string][]domain.Record{
			domain.TableApoiadores:  records(apoiadores),
			domain.TableLiderancas:  records(liderancas),
			domain.TableDemandas:    records(demandas),
			domain.TableEventos:     records(eventos),
			domain.TableEndossos:    records(endossos),
			domain.TableCandidatos:  records(candidatos),
			domain.TableRegioes:     records(regioes),
			domain.TableConversasIA: records([]domain.ConversaIA{conversa}),
			domain.TableMensagensIA: records(mensagens),
		},
	}
}

func date(f *gofakeit.Faker) string {
	return f.DateRange(rangeStart, rangeEnd).Format(dateLayout)
}

func records[T any](in []T) []domain.Record {
	out := make([]domain.Record, 0, len(in))
	for _, v := range in {
		r, err := domain.ToRecord(v)
		if err != nil {
			// entity structs always encode
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

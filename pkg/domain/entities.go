// Package domain defines the records, entity shapes and result envelopes shared by
// the mockbase store, the query stages and the client façade.
package domain

// Table names served by the store.
const (
	// TableApoiadores holds supporter records.
	TableApoiadores = "apoiadores"
	// TableLiderancas holds leader records.
	TableLiderancas = "liderancas"
	// TableDemandas holds demand (request) records.
	TableDemandas = "demandas"
	// TableEventos holds event records.
	TableEventos = "eventos"
	// TableEndossos holds endorsement records.
	TableEndossos = "endossos"
	// TableCandidatos holds candidate records.
	TableCandidatos = "candidatos"
	// TableRegioes holds region records.
	TableRegioes = "regioes"
	// TableConversasIA holds AI conversation headers.
	TableConversasIA = "conversas_ia"
	// TableMensagensIA is the pseudo-table of AI messages, stored per conversation.
	TableMensagensIA = "mensagens_ia"
)

// ConversationField links an AI message to its conversation.
const ConversationField = "conversacaoId"

// StandardTables lists every table created by a fresh store, in a stable order.
var StandardTables = []string{
	TableApoiadores,
	TableLiderancas,
	TableDemandas,
	TableEventos,
	TableEndossos,
	TableCandidatos,
	TableRegioes,
	TableConversasIA,
	TableMensagensIA,
}

// IsStandardTable reports whether name is one of StandardTables.
func IsStandardTable(name string) bool {
	for _, t := range StandardTables {
		if t == name {
			return true
		}
	}
	return false
}

// Status values shared by most entities.
const (
	StatusAtivo   = "Ativo"
	StatusInativo = "Inativo"
)

// Ref is the one-level embedded reference several entities carry ({id, nome}).
type Ref struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Apoiador is a supporter registered by a leader.
type Apoiador struct {
	ID               string   `json:"id"`
	Nome             string   `json:"nome"`
	Email            string   `json:"email,omitempty"`
	Telefone         string   `json:"telefone,omitempty"`
	Cidade           string   `json:"cidade"`
	Bairro           string   `json:"bairro,omitempty"`
	RegiaoID         string   `json:"regiaoId,omitempty"`
	Lideranca        *Ref     `json:"lideranca,omitempty"`
	Status           string   `json:"status"`
	NivelEngajamento int      `json:"nivelEngajamento,omitempty"`
	DataCadastro     string   `json:"dataCadastro,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// Lideranca is a community leader coordinating supporters.
type Lideranca struct {
	ID              string `json:"id"`
	Nome            string `json:"nome"`
	Email           string `json:"email,omitempty"`
	Telefone        string `json:"telefone,omitempty"`
	Cidade          string `json:"cidade"`
	RegiaoID        string `json:"regiaoId,omitempty"`
	Status          string `json:"status"`
	TotalApoiadores int    `json:"totalApoiadores"`
	DataCadastro    string `json:"dataCadastro,omitempty"`
}

// Demanda is a request raised by a supporter or leader.
type Demanda struct {
	ID           string `json:"id"`
	Titulo       string `json:"titulo"`
	Descricao    string `json:"descricao,omitempty"`
	Categoria    string `json:"categoria"`
	Prioridade   string `json:"prioridade"`
	Status       string `json:"status"`
	Cidade       string `json:"cidade,omitempty"`
	Solicitante  *Ref   `json:"solicitante,omitempty"`
	Responsavel  *Ref   `json:"responsavel,omitempty"`
	DataAbertura string `json:"dataAbertura"`
	DataPrazo    string `json:"dataPrazo,omitempty"`
}

// Evento is a scheduled event with its participant list.
type Evento struct {
	ID            string `json:"id"`
	Titulo        string `json:"titulo"`
	Descricao     string `json:"descricao,omitempty"`
	Tipo          string `json:"tipo"`
	Data          string `json:"data"`
	Local         string `json:"local,omitempty"`
	Cidade        string `json:"cidade"`
	Status        string `json:"status"`
	Capacidade    int    `json:"capacidade,omitempty"`
	Participantes []Ref  `json:"participantes,omitempty"`
}

// Endosso records an endorsement given to a candidate.
type Endosso struct {
	ID          string `json:"id"`
	CandidatoID string `json:"candidatoId"`
	Lideranca   *Ref   `json:"lideranca,omitempty"`
	Tipo        string `json:"tipo"`
	Status      string `json:"status"`
	Data        string `json:"data"`
	Observacoes string `json:"observacoes,omitempty"`
}

// Candidato is a candidate tracked by the campaign dashboards.
type Candidato struct {
	ID      string `json:"id"`
	Nome    string `json:"nome"`
	Partido string `json:"partido"`
	Numero  int    `json:"numero"`
	Cargo   string `json:"cargo"`
	Cidade  string `json:"cidade,omitempty"`
	Status  string `json:"status"`
}

// Regiao groups cities and neighbourhoods under a coordinator.
type Regiao struct {
	ID          string `json:"id"`
	Nome        string `json:"nome"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	Coordenador *Ref   `json:"coordenador,omitempty"`
	Populacao   int    `json:"populacao,omitempty"`
}

// ConversaIA is the header of an assistant conversation.
type ConversaIA struct {
	ID           string `json:"id"`
	Titulo       string `json:"titulo"`
	UsuarioID    string `json:"usuarioId"`
	CriadoEm     string `json:"criadoEm"`
	AtualizadoEm string `json:"atualizadoEm,omitempty"`
}

// MensagemIA is a single message of an assistant conversation.
type MensagemIA struct {
	ID            string `json:"id"`
	ConversacaoID string `json:"conversacaoId"`
	Papel         string `json:"papel"`
	Conteudo      string `json:"conteudo"`
	CriadoEm      string `json:"criadoEm"`
}

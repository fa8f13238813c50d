package domain

import (
	"time"

	"github.com/google/uuid"
)

// ---------- Claves y TTLs de caché ----------

const (
	KeyEpidemicData = "epidemicData"
	KeyWorldData    = "worldData"
	KeyAccessToken  = "access_token"
	KeyMapLocation  = "mapLocation"
	KeyViewCounter  = "viewCounter"

	TTLEpidemicSecs = 60 * 60 * 2      // 2h
	TTLWorldSecs    = 60 * 60 * 3      // 3h
	TTLTokenSecs    = 60 * 60 * 24 * 3 // el token se asume válido 3 días, ignorando el expiry declarado
	TTLGeoSecs      = 60 * 60          // 1h
)

// NationalStat son los totales o deltas nacionales tal como los publica el
// proveedor de noticias.
type NationalStat struct {
	Confirm      int `json:"confirm"`
	Suspect      int `json:"suspect"`
	Dead         int `json:"dead"`
	Heal         int `json:"heal"`
	NowConfirm   int `json:"nowConfirm"`
	NowSevere    int `json:"nowSevere"`
	ImportedCase int `json:"importedCase"`
	NoInfect     int `json:"noInfect"`
}

// ProvinceStat es un par nombre/valor de una serie por provincia.
type ProvinceStat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ProvinceReport es el informe normalizado de una provincia dentro del
// resumen doméstico. Los campos transitorios de presentación del proveedor
// (showRate, showHeal) se descartan al normalizar.
type ProvinceReport struct {
	Name         string
	TodayConfirm int
	NowConfirm   int
	TotalConfirm int
}

// DomesticSummary es el resumen doméstico ya normalizado.
type DomesticSummary struct {
	LastUpdateTime string
	ChinaAdd       NationalStat
	ChinaTotal     NationalStat
	Provinces      []ProvinceReport
}

// RankedCity es una entrada del ranking por nuevos confirmados.
type RankedCity struct {
	Province   string `json:"province"`
	City       string `json:"city"`
	Grade      string `json:"grade,omitempty"`
	ConfirmAdd int    `json:"confirmAdd"`
	Confirm    int    `json:"confirm"`
	NowConfirm int    `json:"nowConfirm"`
	Dead       int    `json:"dead"`
	Heal       int    `json:"heal"`
}

// DayRecord es un punto de la serie histórica diaria.
type DayRecord struct {
	Date         string `json:"date"`
	LocalConfirm int    `json:"localConfirmH5"`
}

// TrendSeries es la serie de tendencia muestreada que consume el dashboard.
type TrendSeries struct {
	Days         []string `json:"xDay"`
	LocalConfirm []int    `json:"yLocalConfirm"`
}

// Snapshot es el agregado público. Se cachea y se sirve como un todo: o
// están todas las secciones o no hay snapshot.
type Snapshot struct {
	LastUpdateTime     string         `json:"lastUpdateTime"`
	ChinaAdd           NationalStat   `json:"chinaAdd"`
	ChinaTotal         NationalStat   `json:"chinaTotal"`
	TodayProvince      []ProvinceStat `json:"todayProvinceData"`
	NowConfirmProvince []ProvinceStat `json:"nowConfirmProvinceData"`
	TotalProvince      []ProvinceStat `json:"totalProvinceData"`
	ProvinceRanking    []RankedCity   `json:"epidemicProvinceList"`
	LocalConfirmTrend  TrendSeries    `json:"localConfirmTrend"`
}

// OCRDocument es un resultado de OCR persistido. Solo-añadir: no hay
// actualización ni borrado.
type OCRDocument struct {
	ID        uuid.UUID `json:"id"`
	Data      string    `json:"data"` // resultados crudos del proveedor, como JSON serializado
	CreatedAt time.Time `json:"createdAt"`
}

// ---------- Eventos de integración ----------

const (
	EpidemicTopic = "epidemic-events"

	EventSnapshotRefreshed = "epidemic.snapshot.refreshed"
)

// SnapshotRefreshed se publica tras ensamblar y cachear un snapshot nuevo.
// Es un aviso informativo: perderlo no compromete la corrección.
type SnapshotRefreshed struct {
	LastUpdateTime string    `json:"lastUpdateTime"`
	Provinces      int       `json:"provinces"`
	RefreshedAt    time.Time `json:"refreshedAt"`
}

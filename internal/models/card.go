package models

// CardRecord is a canonical card entry as returned by the catalog service.
// Records are immutable once fetched; a fresher fetch replaces the whole
// record, never mutates it in place.
type CardRecord struct {
	Name          string     `json:"name"`
	TypeLine      string     `json:"type_line"`
	OracleText    string     `json:"oracle_text"`
	ColorIdentity []string   `json:"color_identity"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	CardFaces     []CardFace `json:"card_faces,omitempty"`
	Prices        CardPrices `json:"prices"`
}

// CardFace is one face of a double-faced card. Single-faced cards carry no
// faces and expose their image and text at the top level instead.
type CardFace struct {
	Name       string     `json:"name"`
	TypeLine   string     `json:"type_line"`
	OracleText string     `json:"oracle_text"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

// CardPrices holds the catalog's per-finish prices as decimal strings.
// The service returns null for finishes a printing was never sold in, which
// decodes to the empty string here.
type CardPrices struct {
	USD       string `json:"usd"`
	USDFoil   string `json:"usd_foil"`
	USDEtched string `json:"usd_etched"`
	EUR       string `json:"eur"`
	EURFoil   string `json:"eur_foil"`
}

// HasAny reports whether any recognized price field is present.
func (p CardPrices) HasAny() bool {
	return p.USD != "" || p.USDFoil != "" || p.USDEtched != "" || p.EUR != "" || p.EURFoil != ""
}

// HasPrice reports whether the record exposes any recognized price field.
func (r *CardRecord) HasPrice() bool {
	return r.Prices.HasAny()
}

// HasUSDPrice reports whether the record exposes a direct non-foil USD price.
func (r *CardRecord) HasUSDPrice() bool {
	return r.Prices.USD != ""
}

// FullOracleText returns the rules text across all faces. Double-faced cards
// keep their text on the faces, so callers that scan rules text must not look
// at OracleText alone.
func (r *CardRecord) FullOracleText() string {
	if len(r.CardFaces) == 0 {
		return r.OracleText
	}
	text := r.OracleText
	for _, face := range r.CardFaces {
		if face.OracleText == "" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += face.OracleText
	}
	return text
}

// CardSearchResult is one page of a catalog search.
type CardSearchResult struct {
	Cards      []CardRecord `json:"cards"`
	TotalCount int          `json:"total_count"`
	HasMore    bool         `json:"has_more"`
}

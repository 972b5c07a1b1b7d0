package service

// RegionInfo describes one topology region for GET /v1/regions.
type RegionInfo struct {
	ID       uint32 `json:"id"`
	Vertices int    `json:"vertices"`
	Color    string `json:"color,omitempty"` // #rrggbb when a palette is loaded
}

// RegionsResponse is returned by GET /v1/regions.
type RegionsResponse struct {
	VertexCount int          `json:"vertex_count"`
	Regions     []RegionInfo `json:"regions"`
}

// TouchedRequest matches the POST /v1/regions/touched body.
type TouchedRequest struct {
	Selection []int `json:"selection"`
}

// TouchedResponse lists the regions touched by a selection.
type TouchedResponse struct {
	Regions []uint32 `json:"regions"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID    string `json:"id"`
	Masks int    `json:"masks"`
}

// MaskRequest matches the PUT /v1/sessions/{id}/masks/{name} body.
type MaskRequest struct {
	Weights []float32 `json:"weights"`
}

// MaskListResponse lists the mask names visible to a session.
type MaskListResponse struct {
	Masks []string `json:"masks"`
}

// ResolveRequest matches the POST /v1/sessions/{id}/resolve body.
// A null or missing selection means "use the stored mask"; an empty list is
// an explicit empty selection. A missing iteration count uses the server
// default.
type ResolveRequest struct {
	BaseMesh   string `json:"base_mesh"`
	Selection  *[]int `json:"selection,omitempty"`
	Iterations *int   `json:"iterations,omitempty"`
	Overlay    bool   `json:"overlay,omitempty"`
}

// ResolveResponse carries a resolved mask.
type ResolveResponse struct {
	MaskKey string    `json:"mask_key"`
	Weights []float32 `json:"weights"`
}

// BlendRequest matches the POST /v1/sessions/{id}/blend body.
type BlendRequest struct {
	ResolveRequest
	Base   [][3]float32 `json:"base"`
	Target [][3]float32 `json:"target"`
}

// BlendResponse carries blended vertex positions and the mask used.
type BlendResponse struct {
	Positions [][3]float32 `json:"positions"`
	Weights   []float32    `json:"weights"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

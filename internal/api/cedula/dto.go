package cedula

// FrontResponse always carries all five keys.
type FrontResponse struct {
	Nombres         string `json:"nombres"`
	Apellidos       string `json:"apellidos"`
	NumeroIdentidad string `json:"numeroIdentidad"`
	FechaNacimiento string `json:"fechaNacimiento"`
	LugarNacimiento string `json:"lugarNacimiento"`
}

// Keys of the sparse reverse-side response.
const (
	KeyTipoDiscapacidad       = "tipoDiscapacidad"
	KeyPorcentajeDiscapacidad = "porcentajeDiscapacidad"
	KeyDonante                = "donante"
)

// DonorAffirmative is the only value ever emitted for KeyDonante.
const DonorAffirmative = "Sí"

// BackResponse only contains the keys that were found.
type BackResponse map[string]string

type HealthResponse struct {
	Status              string `json:"status"`
	DetectorLoaded      bool   `json:"detectorLoaded"`
	RecognizerAvailable bool   `json:"recognizerAvailable"`
	Recognizer          string `json:"recognizer,omitempty"`
}

type ImageRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required,base64|datauri"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ExtractionPath tells which strategy produced a front result.
type ExtractionPath string

const (
	PathDetection ExtractionPath = "detection"
	PathHeuristic ExtractionPath = "heuristic"
)

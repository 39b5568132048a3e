package entity

import "image"

// Labels produced by the trained cédula detector.
const (
	LabelFirstname      = "firstname"
	LabelIdentityNumber = "identity-number"
	LabelLastname       = "lastname"
	LabelLastnameFirst  = "lastname_first"
	LabelLastnameSecond = "lastname_second"
)

// Labels only ever filled by the heuristic whole-image path.
const (
	LabelBirthDate  = "birth-date"
	LabelBirthPlace = "birth-place"
)

type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

type DetectedRegion struct {
	Label      string      `json:"label"`
	Box        BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
}

// Fields maps a field label to its recognized (or normalized) text.
type Fields map[string]string

func (f Fields) Get(label string) string {
	if f == nil {
		return ""
	}
	return f[label]
}

func (f Fields) Labels() []string {
	labels := make([]string, 0, len(f))
	for label := range f {
		labels = append(labels, label)
	}
	return labels
}

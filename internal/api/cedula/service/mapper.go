package cedulaService

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/internal/entity"
	"strings"
)

// MapFront fills the five key schema, defaulting missing fields to "".
func MapFront(fields entity.Fields) *cedula.FrontResponse {
	var surnames []string
	for _, label := range []string{entity.LabelLastname, entity.LabelLastnameFirst, entity.LabelLastnameSecond} {
		if v := strings.TrimSpace(fields.Get(label)); v != "" {
			surnames = append(surnames, v)
		}
	}

	return &cedula.FrontResponse{
		Nombres:         fields.Get(entity.LabelFirstname),
		Apellidos:       strings.Join(surnames, " "),
		NumeroIdentidad: fields.Get(entity.LabelIdentityNumber),
		FechaNacimiento: fields.Get(entity.LabelBirthDate),
		LugarNacimiento: fields.Get(entity.LabelBirthPlace),
	}
}

func MapBack(fields map[string]string) cedula.BackResponse {
	return cedula.BackResponse(fields)
}

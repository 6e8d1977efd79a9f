package handler

import (
	"net/http"

	"pulsebridge-consult/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxUploadSize bounds multipart bodies carrying documents.
const maxUploadSize = 10 << 20

// pathUUID parses the named route variable, writing a 400 when it is not a
// UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label, nil)
		return uuid.Nil, false
	}
	return id, true
}

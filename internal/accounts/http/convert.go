package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
)

func toUserResponse(acc domain.Account) memosdk.UserResponse {
	meta := make(map[string]string, len(acc.Meta))
	for k, v := range acc.Meta {
		meta[k] = v
	}

	return memosdk.UserResponse{
		ID:          acc.ID,
		CreatedDate: acc.CreatedDate.Unix(),
		UpdatedDate: acc.UpdatedDate.Unix(),
		UserRole:    acc.Role.String(),
		UserLogin:   acc.Login,
		FirstName:   acc.FirstName,
		LastName:    acc.LastName,
		Meta:        meta,
	}
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewError(domain.KindValueInvalid, domain.LocPath, "user_id")
	}
	return id, nil
}

// optionalMeta collects the non-nil meta fields of a request.
func optionalMeta(fields map[string]*string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

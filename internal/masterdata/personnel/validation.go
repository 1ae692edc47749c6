package personnel

import (
	"strings"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

func normalize(in Input) Input {
	in.AGM = strings.TrimSpace(in.AGM)
	in.AEM = strings.TrimSpace(in.AEM)
	in.Rank = strings.TrimSpace(in.Rank)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	return in
}

func validate(in Input) error {
	errs := httpx.ValidationErrors{}
	if in.AGM == "" {
		errs["agm"] = "is required"
	}
	if in.FirstName == "" {
		errs["first_name"] = "is required"
	}
	if in.LastName == "" {
		errs["last_name"] = "is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

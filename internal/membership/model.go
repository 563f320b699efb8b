// Package membership maintains admin membership on group (society)
// accounts held in the member record store. The scripts here follow the
// operator flow: read the current state, warn about anything suspicious,
// ask for confirmation, then mutate and commit.
package membership

import (
	"github.com/uptrace/bun"
)

// Member is a personal account in the record store, identified by CRSid.
type Member struct {
	bun.BaseModel `bun:"table:members"`

	CRSID string `bun:"crsid,pk"`
	Name  string `bun:"name"`
}

// Society is a group account. Admins carries the members currently
// holding admin on the society, loaded through the society_admins join
// table.
type Society struct {
	bun.BaseModel `bun:"table:societies"`

	Name        string    `bun:"society,pk"`
	Description string    `bun:"description"`
	Admins      []*Member `bun:"m2m:society_admins,join:Society=Member"`
}

// SocietyAdmin is the join row between a society and an admin member.
type SocietyAdmin struct {
	bun.BaseModel `bun:"table:society_admins"`

	SocietyName string `bun:"society,pk"`
	CRSID       string `bun:"crsid,pk"`

	Society *Society `bun:"rel:belongs-to,join:society=society"`
	Member  *Member  `bun:"rel:belongs-to,join:crsid=crsid"`
}

// IsAdmin reports whether the given CRSid is currently an admin.
func (s *Society) IsAdmin(crsid string) bool {
	for _, m := range s.Admins {
		if m.CRSID == crsid {
			return true
		}
	}
	return false
}

// IsSoleAdmin reports whether the given CRSid is the only remaining
// admin of the society.
func (s *Society) IsSoleAdmin(crsid string) bool {
	return len(s.Admins) == 1 && s.Admins[0].CRSID == crsid
}

// AdminCRSIDs returns the set of CRSids currently holding admin.
func (s *Society) AdminCRSIDs() []string {
	ids := make([]string, 0, len(s.Admins))
	for _, m := range s.Admins {
		ids = append(ids, m.CRSID)
	}
	return ids
}

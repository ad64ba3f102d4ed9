package models

// UserLevel tracks overall experience across all courses.
type UserLevel struct {
	Level uint32 `json:"level" gorm:"column:level;not null;default:0"`
	XP    uint32 `json:"xp" gorm:"column:xp;not null;default:0"`
}

// UserProgress is the user's position in the course tree. It lives in its
// own table keyed by user id.
type UserProgress struct {
	UserID ID     `json:"-" gorm:"column:user_id;primaryKey"`
	Course uint32 `json:"course" gorm:"not null;default:0"`
	Unit   uint32 `json:"unit" gorm:"not null;default:0"`
	Sector uint32 `json:"sector" gorm:"not null;default:0"`
	Level  uint32 `json:"level" gorm:"not null;default:0"`
	Task   uint32 `json:"task" gorm:"not null;default:0"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// User is the account aggregate. Friends and Progress are owned rows in
// auxiliary tables and are assembled on read; the password hash never
// serializes outward.
type User struct {
	ID           ID      `json:"id" gorm:"primaryKey"`
	Username     string  `json:"username" gorm:"uniqueIndex;not null;size:64"`
	PasswordHash string  `json:"-" gorm:"not null;size:255"`
	Email        *string `json:"email,omitempty" gorm:"size:128"`
	Phone        *string `json:"phone,omitempty" gorm:"size:32"`
	Bio          *string `json:"bio,omitempty" gorm:"type:text"`

	Level UserLevel `json:"level" gorm:"embedded"`

	Friends  []ID         `json:"friends" gorm:"-"`
	Progress UserProgress `json:"progress" gorm:"-"`

	// Set only on login; sessions live in their own table.
	AuthToken *ID `json:"auth_token,omitempty" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

// FriendLink is one directed friendship row. Links are not mirrored: an
// update touches only the user_id_1 -> user_id_2 direction.
type FriendLink struct {
	UserID1 ID `gorm:"column:user_id_1;primaryKey"`
	UserID2 ID `gorm:"column:user_id_2;primaryKey"`
}

func (FriendLink) TableName() string {
	return "friends"
}

// Equal reports attribute identity between two user snapshots, ignoring the
// session token. Friend sets compare order-independently.
func (u *User) Equal(other *User) bool {
	if u.ID != other.ID ||
		u.Username != other.Username ||
		u.PasswordHash != other.PasswordHash ||
		!strPtrEqual(u.Email, other.Email) ||
		!strPtrEqual(u.Phone, other.Phone) ||
		!strPtrEqual(u.Bio, other.Bio) ||
		u.Level != other.Level {
		return false
	}
	p, q := u.Progress, other.Progress
	p.UserID, q.UserID = NilID, NilID
	if p != q {
		return false
	}
	return sameIDSet(u.Friends, other.Friends)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameIDSet(a, b []ID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[ID]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

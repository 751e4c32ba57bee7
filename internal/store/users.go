package store

import (
	"slices"
	"strings"

	"github.com/roach88/camellia/internal/model"
)

// Users returns every account.
func (s *Store) Users() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// User returns the account with the given username.
func (s *Store) User(username string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.userIndex(username)
	if i < 0 {
		return nil, false
	}
	return s.users[i], true
}

// UsernameExists reports whether username is taken.
func (s *Store) UsernameExists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userIndex(username) >= 0
}

// Authenticate returns the first account whose username and password both
// match exactly.
func (s *Store) Authenticate(username, password string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return nil, false
}

func (s *Store) userIndex(username string) int {
	return slices.IndexFunc(s.users, func(u *model.User) bool { return u.Username == username })
}

// AddUser registers u. Usernames are unique.
func (s *Store) AddUser(u *model.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(u.Username) >= 0 {
		return newError(ErrCodeDuplicate, map[string]string{"username": u.Username}, "username %s is already taken", u.Username)
	}
	s.users = append(s.users, u)
	return s.flushUsers()
}

// RemoveUser deletes the account. Orders placed by it are kept.
func (s *Store) RemoveUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(username)
	if i < 0 {
		return notFound("user", username)
	}
	s.users = slices.Delete(s.users, i, i+1)
	return s.flushUsers()
}

// UpdateUser replaces the account named username with upd. Renaming to a
// username that is already taken is rejected.
func (s *Store) UpdateUser(username string, upd model.User) error {
	if err := validateUser(&upd); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(username)
	if i < 0 {
		return notFound("user", username)
	}
	if upd.Username != username && s.userIndex(upd.Username) >= 0 {
		return newError(ErrCodeDuplicate, map[string]string{"username": upd.Username}, "username %s is already taken", upd.Username)
	}
	*s.users[i] = upd
	return s.flushUsers()
}

func validateUser(u *model.User) error {
	switch {
	case u == nil:
		return invalidField("user", "user is required")
	case strings.TrimSpace(u.Username) == "":
		return invalidField("username", "username is required")
	case u.Password == "":
		return invalidField("password", "password is required")
	}
	if _, err := model.ParseRole(string(u.Role)); err != nil {
		return invalidField("role", "%v", err)
	}
	return nil
}

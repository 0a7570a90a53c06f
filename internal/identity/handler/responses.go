package handler

import "farmshop/internal/identity/models"

type SessionResponse struct {
	User    *models.User `json:"user"`
	IsAdmin bool         `json:"is_admin"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Count int            `json:"count"`
}

func toUserList(users []*models.User) UserListResponse {
	if users == nil {
		users = []*models.User{}
	}
	return UserListResponse{Users: users, Count: len(users)}
}

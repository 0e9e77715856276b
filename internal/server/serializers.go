package server

import (
	"socialnet/internal/models"
	"socialnet/internal/service"
)

// RoleResponse renders a role as its stored key and display label.
type RoleResponse struct {
	Key   models.Role `json:"key"`
	Value string      `json:"value"`
}

// UserResponse is the public account representation, also nested in posts,
// comments and friendships.
type UserResponse struct {
	ID            uint         `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	PersonalImage *string      `json:"personal_image"`
	Role          RoleResponse `json:"role"`
}

// LoginResponse is returned by registration and login.
type LoginResponse struct {
	Token    string       `json:"token"`
	ID       uint         `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     RoleResponse `json:"role"`
}

// FriendshipResponse renders a friendship with both parties.
type FriendshipResponse struct {
	ID       uint                    `json:"id"`
	Sender   UserResponse            `json:"sender"`
	Receiver UserResponse            `json:"receiver"`
	Status   models.FriendshipStatus `json:"status"`
}

// AttachmentResponse renders a stored post attachment.
type AttachmentResponse struct {
	ID   uint   `json:"id"`
	Post uint   `json:"post"`
	File string `json:"file"`
}

// PostAttachmentResponse is the attachment shape embedded in posts.
type PostAttachmentResponse struct {
	ID   uint   `json:"id"`
	File string `json:"file"`
}

// PostResponse renders a post with its counters and attachments.
type PostResponse struct {
	ID              uint                     `json:"id"`
	User            UserResponse             `json:"user"`
	Text            string                   `json:"text"`
	IsDraft         bool                     `json:"is_draft"`
	TimeSince       string                   `json:"time_since"`
	IsLiked         bool                     `json:"is_liked"`
	LikesCount      int                      `json:"likes_count"`
	CommentsCount   int                      `json:"comments_count"`
	PostAttachments []PostAttachmentResponse `json:"post_attachments"`
}

// CommentResponse renders a comment with its author.
type CommentResponse struct {
	ID        uint         `json:"id"`
	User      UserResponse `json:"user"`
	Post      uint         `json:"post"`
	Text      string       `json:"text"`
	TimeSince string       `json:"time_since"`
}

// DetailsResponse carries a short confirmation message.
type DetailsResponse struct {
	Details string `json:"details"`
}

func roleResponse(r models.Role) RoleResponse {
	return RoleResponse{Key: r, Value: r.Display()}
}

func (s *Server) fileURL(key string) string {
	if key == "" {
		return ""
	}
	return s.blobs.URL(key)
}

func (s *Server) userResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     roleResponse(u.Role),
	}
	if u.PersonalImage != "" {
		image := s.fileURL(u.PersonalImage)
		resp.PersonalImage = &image
	}
	return resp
}

func (s *Server) userResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, s.userResponse(&users[i]))
	}
	return out
}

func loginResponse(data *service.LoginData) LoginResponse {
	return LoginResponse{
		Token:    data.Token,
		ID:       data.User.ID,
		Username: data.User.Username,
		Email:    data.User.Email,
		Role:     roleResponse(data.User.Role),
	}
}

func (s *Server) friendshipResponse(f *models.Friendship) FriendshipResponse {
	return FriendshipResponse{
		ID:       f.ID,
		Sender:   s.userResponse(&f.Sender),
		Receiver: s.userResponse(&f.Receiver),
		Status:   f.Status,
	}
}

func (s *Server) friendshipResponses(friendships []models.Friendship) []FriendshipResponse {
	out := make([]FriendshipResponse, 0, len(friendships))
	for i := range friendships {
		out = append(out, s.friendshipResponse(&friendships[i]))
	}
	return out
}

func (s *Server) attachmentResponse(a *models.Attachment) AttachmentResponse {
	return AttachmentResponse{ID: a.ID, Post: a.PostID, File: s.fileURL(a.File)}
}

func (s *Server) attachmentResponses(attachments []models.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, s.attachmentResponse(&attachments[i]))
	}
	return out
}

func (s *Server) postResponse(p *models.Post) PostResponse {
	resp := PostResponse{
		ID:              p.ID,
		User:            s.userResponse(&p.User),
		Text:            p.Text,
		IsDraft:         p.IsDraft,
		TimeSince:       models.TimeSince(p.CreatedAt),
		IsLiked:         p.IsLiked,
		LikesCount:      p.LikesCount,
		CommentsCount:   p.CommentsCount,
		PostAttachments: make([]PostAttachmentResponse, 0, len(p.Attachments)),
	}
	for _, a := range p.Attachments {
		resp.PostAttachments = append(resp.PostAttachments, PostAttachmentResponse{ID: a.ID, File: s.fileURL(a.File)})
	}
	return resp
}

func (s *Server) postResponses(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, s.postResponse(&posts[i]))
	}
	return out
}

func (s *Server) commentResponse(cm *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		User:      s.userResponse(&cm.User),
		Post:      cm.PostID,
		Text:      cm.Text,
		TimeSince: models.TimeSince(cm.CreatedAt),
	}
}

func (s *Server) commentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, s.commentResponse(&comments[i]))
	}
	return out
}

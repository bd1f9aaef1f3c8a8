package admin

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expiresIn"`
	Email        string `json:"email"`
	ProviderName string `json:"providerName"`
}

type MeResponse struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	ProviderName string `json:"providerName"`
}

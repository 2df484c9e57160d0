package dto

// ConfirmacaoRequest is the public acknowledgment payload. The token is the
// only credential; audit fields are captured as supplied by the client and
// merged over whatever the request transport already provided (IP, user agent).
type ConfirmacaoRequest struct {
	Token              string `json:"token" validate:"required,len=64,hexadecimal"`
	IP                 string `json:"ip" validate:"omitempty,max=64"`
	UserAgent          string `json:"user_agent" validate:"omitempty,max=512"`
	DispositivoTipo    string `json:"dispositivo_tipo" validate:"omitempty,max=64"`
	DispositivoDesc    string `json:"dispositivo_descricao" validate:"omitempty,max=255"`
	DispositivoID      string `json:"dispositivo_id" validate:"omitempty,max=128"`
	SistemaOperacional string `json:"sistema_operacional" validate:"omitempty,max=128"`
	Navegador          string `json:"navegador" validate:"omitempty,max=128"`
	Localizacao        string `json:"localizacao" validate:"omitempty,max=255"`
}

package api

import "fmt"

// Message templates. Values are interpolated verbatim; in particular the
// billing value string is passed through as given, never reformatted.

func otpMessage(code string) string {
	return fmt.Sprintf("Seu código de verificação é: *%s*\n\nNão compartilhe este código com ninguém.", code)
}

var billingTemplates = map[string]string{
	"D-1": "Olá! Sua assinatura *%s* no valor de R$ %s vence amanhã.\n\nPague via PIX para manter o acesso:\n%s",
	"D0":  "Olá! Sua assinatura *%s* no valor de R$ %s vence hoje.\n\nPague via PIX e evite a suspensão do serviço:\n%s",
	"D+1": "Olá! Sua assinatura *%s* no valor de R$ %s venceu ontem.\n\nRegularize via PIX para reativar o acesso:\n%s",
}

// billingMessage selects the template for the given reminder type. ok is
// false for an unknown type.
func billingMessage(typ, service, value, pixKey string) (text string, ok bool) {
	tpl, ok := billingTemplates[typ]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(tpl, service, value, pixKey), true
}

package lexer

import (
	"arithc/internal/diag"
)

type Options struct {
	Reporter diag.Reporter // может быть nil, тогда ошибка только возвращается
}

package fixer

import "github.com/frroossst/readonlylint/immutability"

const primitiveKeyword = `string|number|boolean|bigint|symbol`

// Builtins returns the default TypeScript rewrites. Callers get a fresh copy.
func Builtins() Config {
	wrapDeep := Pattern{
		Expr:    `^(?!ReadonlyDeep<)(?:Readonly<([\s\S]+)>|([\s\S]+))$`,
		Replace: `ReadonlyDeep<$1$2>`,
		Label:   "Surround with ReadonlyDeep.",
	}
	deep := Rules{
		Fix: []Pattern{
			{
				Expr:    `^(` + primitiveKeyword + `)\[\]$`,
				Replace: `readonly $1[]`,
				Label:   "Prepend with readonly.",
			},
			{
				Expr:    `^Array<(` + primitiveKeyword + `)>$`,
				Replace: `ReadonlyArray<$1>`,
				Label:   "Use ReadonlyArray instead of Array.",
			},
			{
				Expr:    `^(Map|Set)<((?:` + primitiveKeyword + `)(?:, *(?:` + primitiveKeyword + `))?)>$`,
				Replace: `Readonly$1<$2>`,
				Label:   "Use Readonly$1 instead of $1.",
			},
		},
		Suggest: [][]Pattern{{wrapDeep}},
	}

	return Config{
		immutability.ReadonlyShallow: {
			Suggest: [][]Pattern{
				{
					{
						Expr:    `^(Array|Map|Set)<([\s\S]+)>$`,
						Replace: `Readonly$1<$2>`,
						Label:   "Use Readonly$1 instead of $1.",
					},
					{
						Expr:    `^(?!readonly )([\s\S]+\])$`,
						Replace: `readonly $1`,
						Label:   "Prepend with readonly.",
					},
				},
				{
					{
						Expr:    `^(?!Readonly<)([\s\S]+)$`,
						Replace: `Readonly<$1>`,
						Label:   "Surround with Readonly.",
					},
				},
			},
		},
		immutability.ReadonlyDeep: deep,
		immutability.Immutable:    deep,
	}
}

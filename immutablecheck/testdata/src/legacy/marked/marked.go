package marked

type Settings struct {
	Names []string
}

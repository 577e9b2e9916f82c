package platforms

type Repo interface {
	Upsert(platformData *Platform) error
	Delete(issuer string) error
	Get(issuer string) (*Platform, error)
	List(offset, limit int) ([]*Platform, error)
}

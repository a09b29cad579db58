package restrepo

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/restrepo/internal/constants"
)

// Base carries what every capability needs: the API and the serializer.
type Base[M any] struct {
	API        *ResourceAPI
	Serializer Serializer[M]
}

// NewBase creates a Base shared by the capabilities of one repository.
func NewBase[M any](api *ResourceAPI, serializer Serializer[M]) (*Base[M], error) {
	if api == nil {
		return nil, ErrClientRequired
	}

	if serializer == nil {
		return nil, ErrSerializerRequired
	}

	return &Base[M]{API: api, Serializer: serializer}, nil
}

func (b *Base[M]) fromDTO(dto DTO) (M, error) {
	model, err := b.Serializer.FromDTO(dto)
	if err != nil {
		var zero M

		return zero, fmt.Errorf("deserializing response: %w", err)
	}

	return model, nil
}

func (b *Base[M]) toDTO(model M) (DTO, error) {
	dto, err := b.Serializer.ToDTO(model)
	if err != nil {
		return nil, fmt.Errorf("serializing payload: %w", err)
	}

	return dto, nil
}

// Retriever adds Get.
type Retriever[M any] struct{ *Base[M] }

// NewRetriever creates the Get capability over base.
func NewRetriever[M any](base *Base[M]) Retriever[M] { return Retriever[M]{base} }

// Get fetches one entity.
func (r Retriever[M]) Get(ctx context.Context, pk PK, config ...RequestContext) (M, error) {
	rc := BuildContext(append([]RequestContext{WithPK(pk)}, config...)...)

	dto, err := r.API.Get(ctx, rc)
	if err != nil {
		var zero M

		return zero, err
	}

	return r.fromDTO(dto)
}

// Lister adds List.
type Lister[M any] struct{ *Base[M] }

// NewLister creates the List capability over base.
func NewLister[M any](base *Base[M]) Lister[M] { return Lister[M]{base} }

// List fetches one page. Pages are 1-based; anything lower is treated as 1.
func (l Lister[M]) List(ctx context.Context, page int, config ...RequestContext) ([]M, Meta, error) {
	if page < 1 {
		page = 1
	}

	rc := BuildContext(append([]RequestContext{{Pagination: P(PageParam, page)}}, config...)...)

	result, err := l.API.List(ctx, rc)
	if err != nil {
		return nil, nil, err
	}

	items := make([]M, 0, len(result.Items))

	for i, dto := range result.Items {
		item, err := l.fromDTO(dto)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i, err)
		}

		items = append(items, item)
	}

	return items, result.Meta, nil
}

// Creator adds Create.
type Creator[M any] struct{ *Base[M] }

// NewCreator creates the Create capability over base.
func NewCreator[M any](base *Base[M]) Creator[M] { return Creator[M]{base} }

// Create serializes raw, posts it and returns the created entity.
func (c Creator[M]) Create(ctx context.Context, raw M, config ...RequestContext) (M, error) {
	var zero M

	data, err := c.toDTO(raw)
	if err != nil {
		return zero, err
	}

	rc := BuildContext(append(append([]RequestContext{}, config...), WithData(data))...)

	dto, err := c.API.Create(ctx, rc)
	if err != nil {
		return zero, err
	}

	return c.fromDTO(dto)
}

// Updater adds Update.
type Updater[M any] struct{ *Base[M] }

// NewUpdater creates the Update capability over base.
func NewUpdater[M any](base *Base[M]) Updater[M] { return Updater[M]{base} }

// Update serializes the partial diff, patches it and returns the updated entity.
func (u Updater[M]) Update(ctx context.Context, pk PK, diff M, config ...RequestContext) (M, error) {
	var zero M

	data, err := u.toDTO(diff)
	if err != nil {
		return zero, err
	}

	rc := BuildContext(append([]RequestContext{{URLParams: P(PKParam, pk), Data: data}}, config...)...)

	dto, err := u.API.Update(ctx, rc)
	if err != nil {
		return zero, err
	}

	return u.fromDTO(dto)
}

// Destroyer adds Delete.
type Destroyer[M any] struct{ *Base[M] }

// NewDestroyer creates the Delete capability over base.
func NewDestroyer[M any](base *Base[M]) Destroyer[M] { return Destroyer[M]{base} }

// Delete removes one entity.
func (d Destroyer[M]) Delete(ctx context.Context, pk PK, config ...RequestContext) error {
	rc := BuildContext(append([]RequestContext{WithPK(pk)}, config...)...)

	return d.API.Delete(ctx, rc)
}

// Repository has all five capabilities. Narrower repositories are plain
// structs embedding the capabilities they need.
type Repository[M any] struct {
	*Base[M]
	Retriever[M]
	Lister[M]
	Creator[M]
	Updater[M]
	Destroyer[M]
}

// NewRepository creates a full CRUD repository.
func NewRepository[M any](api *ResourceAPI, serializer Serializer[M]) (*Repository[M], error) {
	base, err := NewBase(api, serializer)
	if err != nil {
		return nil, err
	}

	return &Repository[M]{
		Base:      base,
		Retriever: NewRetriever(base),
		Lister:    NewLister(base),
		Creator:   NewCreator(base),
		Updater:   NewUpdater(base),
		Destroyer: NewDestroyer(base),
	}, nil
}

// PageLister is anything with a List capability.
type PageLister[M any] interface {
	List(ctx context.Context, page int, config ...RequestContext) ([]M, Meta, error)
}

// ListAll walks pages starting at 1 until the server runs out of results.
func ListAll[M any](ctx context.Context, lister PageLister[M], config ...RequestContext) ([]M, error) {
	var all []M

	for page := 1; page <= constants.MaxListAllPages; page++ {
		items, meta, err := lister.List(ctx, page, config...)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)

		count, hasCount := meta.Count()
		if hasCount && len(all) >= count {
			break
		}

		_, hasNext := meta["next"]
		if meta.Next() == "" && (hasNext || !hasCount) {
			break
		}
	}

	if all == nil {
		all = []M{}
	}

	return all, nil
}

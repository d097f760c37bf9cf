package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-user-api/internal/domain"
	"go-user-api/internal/service"
	httpez "go-user-api/internal/transport/http/ez"
)

// Module mounts the user endpoints. All business rules live in the
// service; handlers only bind, delegate, and shape the output. The db
// handle exists solely for the admin audit listing, which is the one read
// allowed to see soft-deleted rows.
type Module struct {
	svc *service.UserService
	db  *gorm.DB
}

func NewModule(svc *service.UserService, db *gorm.DB) *Module {
	return &Module{svc: svc, db: db}
}

func (m *Module) MountAPI(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.Register(ez, httpez.Action[createIn, userOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (userOut, error) {
			u, err := m.svc.Create(c.Request.Context(), domain.CreateUserInput{
				Name:     in.Name,
				Email:    in.Email,
				Password: in.Password,
			})
			if err != nil {
				return userOut{}, httpez.FromDomain(err)
			}
			return toOut(u), nil
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			users, err := m.svc.FindAll(c.Request.Context())
			if err != nil {
				return listOut{}, httpez.FromDomain(err)
			}
			out := listOut{Items: make([]userOut, 0, len(users))}
			for i := range users {
				out.Items = append(out.Items, toOut(&users[i]))
			}
			return out, nil
		},
	})

	// Lookup by email: "nobody holds it" is a normal answer, so the user
	// field is simply null instead of a 404.
	httpez.Register(ez, httpez.Action[byEmailQ, lookupOut]{
		Method: http.MethodGet,
		Path:   "/users/by-email",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *byEmailQ) (lookupOut, error) {
			u, err := m.svc.FindByEmail(c.Request.Context(), in.Email)
			if err != nil {
				return lookupOut{}, httpez.FromDomain(err)
			}
			if u == nil {
				return lookupOut{}, nil
			}
			out := toOut(u)
			return lookupOut{User: &out}, nil
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u, err := m.svc.FindOne(c.Request.Context(), c.Param("id"))
			if err != nil {
				return userOut{}, httpez.FromDomain(err)
			}
			return toOut(u), nil
		},
	})

	httpez.Register(ez, httpez.Action[updateIn, userOut]{
		Method: http.MethodPatch,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *updateIn) (userOut, error) {
			u, err := m.svc.Update(c.Request.Context(), c.Param("id"), domain.UpdateUserInput{
				Name:     in.Name,
				Email:    in.Email,
				Password: in.Password,
			})
			if err != nil {
				return userOut{}, httpez.FromDomain(err)
			}
			return toOut(u), nil
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := m.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
				return nil, httpez.FromDomain(err)
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}

// MountAdmin exposes the audit listing. with_deleted=1 lifts the
// soft-delete scope so retired accounts stay inspectable for recovery.
func (m *Module) MountAdmin(g *gin.RouterGroup) {
	ez := httpez.New(g)

	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`
		WithDeleted bool   `form:"with_deleted"`
	}
	type row struct {
		ID        string     `json:"id"`
		Email     string     `json:"email"`
		Name      string     `json:"name"`
		CreatedAt time.Time  `json:"createdAt"`
		DeletedAt *time.Time `json:"deletedAt,omitempty"`
	}
	type auditOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	httpez.Register(ez, httpez.Action[listQ, auditOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (auditOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			q := m.db.WithContext(c.Request.Context()).Model(&domain.User{})
			if in.WithDeleted {
				q = q.Unscoped()
			}
			if s := strings.TrimSpace(in.Q); s != "" {
				like := "%" + s + "%"
				q = q.Where("email LIKE ? OR name LIKE ?", like, like)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				return auditOut{}, httpez.Internal("count users failed", err)
			}

			var us []domain.User
			if err := q.Order("created_at DESC").Limit(in.Limit).Offset(in.Offset).Find(&us).Error; err != nil {
				return auditOut{}, httpez.Internal("list users failed", err)
			}

			out := auditOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				r := row{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
				if u.DeletedAt.Valid {
					t := u.DeletedAt.Time
					r.DeletedAt = &t
				}
				out.Items = append(out.Items, r)
			}
			return out, nil
		},
	})
}

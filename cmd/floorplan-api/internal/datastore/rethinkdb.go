package datastore

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	r "gopkg.in/rethinkdb/rethinkdb-go.v6"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

const (
	entityChangedMessage = "the entity was changed from another, please retry"
)

var (
	tables = []string{"floorplan", "image", "rack", "device"}
)

// A RethinkStore is the database access layer for rethinkdb.
type RethinkStore struct {
	*zap.SugaredLogger
	session   r.QueryExecutor
	dbsession *r.Session

	dbname string
	dbuser string
	dbpass string
	dbhost string
}

// New creates a new rethink store.
func New(log *zap.SugaredLogger, dbhost string, dbname string, dbuser string, dbpass string) *RethinkStore {
	return &RethinkStore{
		SugaredLogger: log,
		dbhost:        dbhost,
		dbname:        dbname,
		dbuser:        dbuser,
		dbpass:        dbpass,
	}
}

func multi(ctx context.Context, session r.QueryExecutor, tt ...r.Term) error {
	for _, t := range tt {
		if err := t.Exec(session, r.ExecOpts{Context: ctx}); err != nil {
			return err
		}
	}
	return nil
}

// Health checks if the connection to the database is ok.
func (rs *RethinkStore) Health(ctx context.Context) error {
	return multi(ctx, rs.session,
		r.Branch(
			r.Expr(tables).Difference(rs.db().TableList()).Count().Eq(0),
			r.Expr(true),
			r.Error("too less tables in DB")),
	)
}

// Initialize initializes the database, it should be called every time
// the application comes up before using the data store
func (rs *RethinkStore) Initialize(ctx context.Context) error {
	db := rs.db()

	err := multi(ctx, rs.session,
		// create our tables
		r.Expr(tables).Difference(db.TableList()).ForEach(func(table r.Term) r.Term {
			return db.TableCreate(table, r.TableCreateOpts{Shards: 1, Replicas: 1})
		}),
		// create indices
		db.Table("floorplan").IndexList().Contains("site_id").Do(func(i r.Term) r.Term {
			return r.Branch(i, nil, db.Table("floorplan").IndexCreate("site_id"))
		}),
	)
	if err != nil {
		return err
	}

	rs.Infow("tables successfully initialized")
	return nil
}

func (rs *RethinkStore) floorplanTable() *r.Term {
	res := r.DB(rs.dbname).Table("floorplan")
	return &res
}
func (rs *RethinkStore) imageTable() *r.Term {
	res := r.DB(rs.dbname).Table("image")
	return &res
}
func (rs *RethinkStore) rackTable() *r.Term {
	res := r.DB(rs.dbname).Table("rack")
	return &res
}
func (rs *RethinkStore) deviceTable() *r.Term {
	res := r.DB(rs.dbname).Table("device")
	return &res
}
func (rs *RethinkStore) db() *r.Term {
	res := r.DB(rs.dbname)
	return &res
}

// Mock return the mock from the rethinkdb driver and sets the
// session to this mock. This MUST NOT be called in productive code.
func (rs *RethinkStore) Mock() *r.Mock {
	m := r.NewMock()
	rs.session = m
	return m
}

// Close closes the database session.
func (rs *RethinkStore) Close() error {
	if rs.dbsession != nil {
		err := rs.dbsession.Close()
		if err != nil {
			return err
		}
	}
	rs.Info("Rethinkstore disconnected")
	return nil
}

// Connect connects to the database. If there is an error, it will retry until
// there is a connection or the context is done.
func (rs *RethinkStore) Connect(ctx context.Context) error {
	err := retry.Do(
		func() error {
			s, err := connect(ctx, []string{rs.dbhost}, rs.dbname, rs.dbuser, rs.dbpass)
			if err != nil {
				return err
			}
			rs.dbsession = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(3*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			rs.Errorw("db connection error", "db", rs.dbname, "hosts", rs.dbhost, "attempt", n, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	rs.Info("Rethinkstore connected")
	rs.session = rs.dbsession
	return nil
}

func connect(ctx context.Context, hosts []string, dbname, user, pwd string) (*r.Session, error) {
	session, err := r.Connect(r.ConnectOpts{
		Addresses: hosts,
		Database:  dbname,
		Username:  user,
		Password:  pwd,
		MaxIdle:   10,
		MaxOpen:   20,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB: %w", err)
	}

	err = r.DBList().Contains(dbname).Do(func(row r.Term) r.Term {
		return r.Branch(row, nil, r.DBCreate(dbname))
	}).Exec(session, r.ExecOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("cannot create database: %w", err)
	}

	return session, nil
}

func (rs *RethinkStore) findEntityByID(ctx context.Context, table *r.Term, entity interface{}, id interface{}) error {
	res, err := table.Get(id).Run(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		return fmt.Errorf("cannot find %v with id %v in database: %w", getEntityName(entity), id, err)
	}
	defer res.Close()
	if res.IsNil() {
		return floorplan.NotFound("no %v with id %v found", getEntityName(entity), id)
	}
	err = res.One(entity)
	if err != nil {
		return fmt.Errorf("more than one %v with same id exists: %w", getEntityName(entity), err)
	}
	return nil
}

func (rs *RethinkStore) searchEntities(ctx context.Context, query *r.Term, entity interface{}) error {
	res, err := query.Run(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		return fmt.Errorf("cannot search %v in database: %w", getEntityName(entity), err)
	}
	defer res.Close()

	err = res.All(entity)
	if err != nil {
		return fmt.Errorf("cannot fetch all entities: %w", err)
	}
	return nil
}

func (rs *RethinkStore) listEntities(ctx context.Context, table *r.Term, entity interface{}) error {
	res, err := table.Run(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		return fmt.Errorf("cannot list %v from database: %w", getEntityName(entity), err)
	}
	defer res.Close()

	err = res.All(entity)
	if err != nil {
		return fmt.Errorf("cannot fetch all entities: %w", err)
	}
	return nil
}

func (rs *RethinkStore) createEntity(ctx context.Context, table *r.Term, entity floorplan.Entity) error {
	now := time.Now()
	entity.SetCreated(now)
	entity.SetChanged(now)

	res, err := table.Insert(entity).RunWrite(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		if r.IsConflictErr(err) {
			return floorplan.Conflict("cannot create %v in database, entity already exists: %s", getEntityName(entity), entity.GetID())
		}
		return fmt.Errorf("cannot create %v in database: %w", getEntityName(entity), err)
	}

	if entity.GetID() == "" && len(res.GeneratedKeys) > 0 {
		entity.SetID(res.GeneratedKeys[0])
	}
	return nil
}

func (rs *RethinkStore) upsert(ctx context.Context, table *r.Term, entity interface{}) error {
	_, err := table.Insert(entity, r.InsertOpts{
		Conflict: "replace",
	}).RunWrite(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		return fmt.Errorf("cannot upsert %v in database: %w", getEntityName(entity), err)
	}
	return nil
}

func (rs *RethinkStore) deleteEntity(ctx context.Context, table *r.Term, entity floorplan.Entity) error {
	_, err := table.Get(entity.GetID()).Delete().RunWrite(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		return fmt.Errorf("cannot delete %v with id %q from database: %w", getEntityName(entity), entity.GetID(), err)
	}
	return nil
}

func (rs *RethinkStore) updateEntity(ctx context.Context, table *r.Term, newEntity floorplan.Entity, oldEntity floorplan.Entity) error {
	newEntity.SetChanged(time.Now())
	_, err := table.Get(oldEntity.GetID()).Replace(func(row r.Term) r.Term {
		return r.Branch(row.Field("changed").Eq(r.Expr(oldEntity.GetChanged())), newEntity, r.Error(entityChangedMessage))
	}).RunWrite(rs.session, r.RunOpts{Context: ctx})
	if err != nil {
		if strings.Contains(err.Error(), entityChangedMessage) {
			return floorplan.Conflict("cannot update %v (%s): %v", getEntityName(newEntity), oldEntity.GetID(), err)
		}
		return fmt.Errorf("cannot update %v (%s): %w", getEntityName(newEntity), oldEntity.GetID(), err)
	}
	return nil
}

func getEntityName(entity interface{}) string {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

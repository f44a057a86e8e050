// Package sqlite is the Storage component's concrete implementation (§4.1):
// a gorm-backed, foreign-key-enforced, pure-Go SQLite store. Unlike the
// teacher's own internal/store/sqlite package, there is no package-level
// sync.Once singleton here — New is a plain constructor Boot calls exactly
// once, per §9's redesign flag against module-level singletons.
package sqlite

import (
	"github.com/HappyLadySauce/errors"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/keygen"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/store"
)

type datastore struct {
	db      *gorm.DB
	keyTool keygen.KeyTool
}

func (ds *datastore) Users() store.UserStore { return &users{ds.db} }
func (ds *datastore) WireguardPeers() store.WireguardPeerStore {
	return &wireguardPeers{db: ds.db, keyTool: ds.keyTool}
}
func (ds *datastore) XrayPeers() store.XrayPeerStore { return &xrayPeers{ds.db} }

func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

// New opens (creating if absent) the SQLite database at dataSourceName,
// enables foreign-key enforcement, and migrates the four-table schema of
// §4.1 (Users, Peers, WireguardPeers, XrayPeers). keyTool backs add_wg_peer's
// "generates missing keys via Keygen" requirement; pass keygen.NewCLIKeyTool()
// in production or a keygen.NewFakeKeyTool() in tests.
func New(dataSourceName string, keyTool keygen.KeyTool) (store.Factory, error) {
	db, err := gorm.Open(sqlite.Dialector{DSN: dataSourceName}, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// glebarez/sqlite enables foreign keys via a DSN pragma by default on
	// most builds, but §4.1 requires it unconditionally, so set it explicitly.
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, errors.Wrap(err, "failed to enable foreign key enforcement")
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Peer{},
		&model.WireguardPeer{},
		&model.XrayPeer{},
	); err != nil {
		return nil, errors.Wrap(err, "failed to migrate storage schema")
	}

	klog.V(2).InfoS("storage schema migrated", "dataSource", dataSourceName)

	return &datastore{db: db, keyTool: keyTool}, nil
}

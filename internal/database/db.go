package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/venue-box-office/internal/config"
)

// Open connects to MySQL and verifies the connection.
func Open(cfg config.Config) (*sql.DB, error) {
	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
	}
	// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps dates consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema creates the box-office tables when missing.  Column names are
// the ones the repositories query.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS Event (
		Event_ID       VARCHAR(16)   NOT NULL PRIMARY KEY,
		Event_Name     VARCHAR(255)  NOT NULL,
		Event_Type     VARCHAR(64)   NOT NULL,
		Event_Price    DECIMAL(10,2) NOT NULL,
		Hall_Type      VARCHAR(32)   NOT NULL,
		Event_Date     DATE          NOT NULL,
		Event_Time     VARCHAR(5)    NOT NULL,
		Ticket_Revenue DECIMAL(12,2) NOT NULL DEFAULT 0,
		Ticket_Numbers INT           NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS Customer (
		Customer_ID   VARCHAR(32)  NOT NULL PRIMARY KEY,
		Name          VARCHAR(255) NOT NULL,
		Opt_IN        BOOLEAN      NOT NULL DEFAULT FALSE,
		Payment_Type  VARCHAR(32)  NOT NULL DEFAULT '',
		Gender        VARCHAR(32)  NOT NULL DEFAULT '',
		Postal_Code   VARCHAR(16)  NOT NULL DEFAULT '',
		Email_Address VARCHAR(255) NOT NULL UNIQUE,
		Phone_Number  VARCHAR(32)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Ticket (
		Ticket_ID             VARCHAR(32)   NOT NULL PRIMARY KEY,
		Hall                  VARCHAR(32)   NOT NULL,
		Ticket_Type           VARCHAR(32)   NOT NULL,
		Eligible_For_Discount BOOLEAN       NOT NULL DEFAULT FALSE,
		Wheelchair            BOOLEAN       NOT NULL DEFAULT FALSE,
		Price                 DECIMAL(10,2) NOT NULL,
		Priority_Status       VARCHAR(16)   NOT NULL,
		Customer_ID           VARCHAR(32)   NOT NULL,
		Event_ID              VARCHAR(16)   NOT NULL,
		Seat_ID               VARCHAR(8)    NOT NULL,
		FOREIGN KEY (Customer_ID) REFERENCES Customer(Customer_ID),
		FOREIGN KEY (Event_ID) REFERENCES Event(Event_ID)
	)`,
	`CREATE TABLE IF NOT EXISTS Booking_Details (
		Booking_ID  VARCHAR(32) NOT NULL PRIMARY KEY,
		Status      BOOLEAN     NOT NULL,
		Customer_ID VARCHAR(32) NOT NULL,
		Ticket_ID   VARCHAR(32) NOT NULL,
		Event_ID    VARCHAR(16) NOT NULL,
		FOREIGN KEY (Ticket_ID) REFERENCES Ticket(Ticket_ID)
	)`,
	`CREATE TABLE IF NOT EXISTS Booked_Seats (
		Seat_ID   VARCHAR(8)  NOT NULL,
		Ticket_ID VARCHAR(32) NOT NULL,
		PRIMARY KEY (Seat_ID, Ticket_ID),
		FOREIGN KEY (Ticket_ID) REFERENCES Ticket(Ticket_ID)
	)`,
	`CREATE TABLE IF NOT EXISTS Discount (
		code       VARCHAR(32)  COLLATE utf8mb4_bin NOT NULL PRIMARY KEY,
		percentage INT          NOT NULL,
		reason     VARCHAR(64)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Friends_Of_Lancaster (
		FriendID    INT          NOT NULL AUTO_INCREMENT PRIMARY KEY,
		Name        VARCHAR(255) NOT NULL,
		Email       VARCHAR(255) NOT NULL,
		PhoneNumber VARCHAR(32)  NULL,
		INDEX idx_friends_name (Name)
	)`,
	`CREATE TABLE IF NOT EXISTS User (
		User_ID       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		Username      VARCHAR(64)     NOT NULL UNIQUE,
		Password_Hash VARCHAR(255)    NOT NULL,
		Role          VARCHAR(16)     NOT NULL,
		Is_Active     BOOLEAN         NOT NULL DEFAULT TRUE
	)`,
}

// EnsureSchema creates any missing table.  Existing tables are left as
// they are.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
